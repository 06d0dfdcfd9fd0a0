package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskpilot/core/internal/domain/entities"
	"github.com/taskpilot/core/internal/infrastructure/config"
	"github.com/taskpilot/core/internal/infrastructure/logger"
	"github.com/taskpilot/core/internal/ports"
)

const otpDigits = 6

// OTPService issues and verifies one-time passcodes
type OTPService struct {
	otpRepo ports.OTPRepository
	mailer  ports.Mailer
	cfg     config.OTPConfig
	logger  *logger.Logger
}

// NewOTPService creates a new otp service
func NewOTPService(otpRepo ports.OTPRepository, mailer ports.Mailer, cfg config.OTPConfig, appLogger *logger.Logger) *OTPService {
	return &OTPService{
		otpRepo: otpRepo,
		mailer:  mailer,
		cfg:     cfg,
		logger:  appLogger.WithComponent("otp"),
	}
}

// Issue generates a fresh passcode for the address, dispatches it by mail
// and stores its hash. Dispatch happens before persistence: a stored record
// always means the code reached the gateway. Re-requests inside the resend
// interval are throttled.
func (s *OTPService) Issue(ctx context.Context, email string) error {
	if s.cfg.ResendInterval > 0 {
		latest, err := s.otpRepo.LatestByEmail(ctx, email)
		if err != nil && !errors.Is(err, entities.ErrNoActiveOTP) {
			return fmt.Errorf("failed to check previous otp: %w", err)
		}
		if latest != nil && time.Since(latest.CreatedAt) < s.cfg.ResendInterval {
			return entities.ErrOTPThrottled
		}
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}

	if err := s.mailer.Send(ctx, email, otpSubject, otpBody(code)); err != nil {
		s.logger.Warnw("OTP delivery failed, nothing persisted", "email", email, "error", err)
		return entities.ErrDeliveryFailed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash otp: %w", err)
	}

	record := &entities.OTPRecord{
		Email:    email,
		CodeHash: string(hash),
	}
	if err := s.otpRepo.Create(ctx, record); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	s.logger.Infow("OTP issued", "email", email)
	return nil
}

// Verify checks the candidate code against the newest unexpired record for
// the address. Older records are never consulted: the last-issued code is
// the only valid one.
func (s *OTPService) Verify(ctx context.Context, email, code string) error {
	record, err := s.otpRepo.LatestByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entities.ErrNoActiveOTP) {
			return entities.ErrNoActiveOTP
		}
		return fmt.Errorf("failed to fetch otp record: %w", err)
	}

	if time.Since(record.CreatedAt) > s.cfg.TTL {
		return entities.ErrNoActiveOTP
	}

	if err := bcrypt.CompareHashAndPassword([]byte(record.CodeHash), []byte(code)); err != nil {
		s.logger.Warnw("OTP mismatch", "email", email)
		return entities.ErrInvalidOTP
	}

	return nil
}

// CleanupExpired removes records older than the validity window. Called on a
// housekeeping cadence; verification does not depend on it.
func (s *OTPService) CleanupExpired(ctx context.Context) error {
	deleted, err := s.otpRepo.DeleteExpired(ctx, time.Now().Add(-s.cfg.TTL))
	if err != nil {
		return fmt.Errorf("failed to clean up otps: %w", err)
	}

	if deleted > 0 {
		s.logger.Infow("Expired OTP records removed", "count", deleted)
	}
	return nil
}

// generateCode draws a uniform 6-digit code from crypto/rand
func generateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < otpDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", otpDigits, n), nil
}
