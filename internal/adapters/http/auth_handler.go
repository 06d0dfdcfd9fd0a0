package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/taskpilot/core/internal/application/services"
	"github.com/taskpilot/core/internal/domain/entities"
	"github.com/taskpilot/core/internal/infrastructure/logger"
	"github.com/taskpilot/core/internal/ports"
)

// AuthHandler handles otp and authentication requests
type AuthHandler struct {
	authService *services.AuthService
	otpService  *services.OTPService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, otpService *services.OTPService, appLogger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		otpService:  otpService,
		logger:      appLogger,
	}
}

// IssueOTP dispatches a passcode to the supplied address
func (h *AuthHandler) IssueOTP(c echo.Context) error {
	var req ports.IssueOTPRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.otpService.Issue(c.Request().Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, entities.ErrOTPThrottled):
			return echo.NewHTTPError(http.StatusTooManyRequests, "OTP requested too recently, please wait before retrying")
		case errors.Is(err, entities.ErrDeliveryFailed):
			return echo.NewHTTPError(http.StatusInternalServerError, "Email could not be sent! Please try again after 30 seconds!")
		default:
			h.logger.Errorw("OTP issuance failed", "error", err, "email", req.Email)
			return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
		}
	}

	return c.JSON(http.StatusCreated, ports.MessageResponse{Message: "OTP sent to " + req.Email})
}

// Register creates an account after checking the submitted passcode
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, entities.ErrNoActiveOTP):
			return echo.NewHTTPError(http.StatusUnauthorized, "No active OTP for this address, request a new one")
		case errors.Is(err, entities.ErrInvalidOTP):
			return echo.NewHTTPError(http.StatusUnauthorized, "Incorrect OTP")
		case errors.Is(err, entities.ErrDuplicateEmail):
			return echo.NewHTTPError(http.StatusConflict, "Email already exists!")
		default:
			h.logger.Errorw("Registration failed", "error", err, "email", req.Email)
			return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
		}
	}

	return c.JSON(http.StatusCreated, user)
}

// Login authenticates credentials and returns a session token
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, entities.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
		}
		h.logger.Errorw("Login failed", "error", err, "email", req.Email)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	return c.JSON(http.StatusOK, response)
}

// Logout acknowledges the request. Sessions are stateless, so the only real
// invalidation is the client discarding its token.
func (h *AuthHandler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Logged out, discard the token client-side"})
}

// ListUsers returns registered accounts
func (h *AuthHandler) ListUsers(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	users, err := h.authService.ListUsers(c.Request().Context(), limit, offset)
	if err != nil {
		h.logger.Errorw("List users failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	return c.JSON(http.StatusOK, users)
}
