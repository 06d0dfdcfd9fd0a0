package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taskpilot/core/internal/domain/entities"
)

// Mailer is the outbound notification gateway. Implementations report
// delivery acceptance through the returned error; the core treats any
// failure uniformly.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// OTPService interface for passcode issuance and verification
type OTPService interface {
	Issue(ctx context.Context, email string) error
	Verify(ctx context.Context, email, code string) error
}

// AuthService interface for registration, login and session validation
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*entities.User, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	ValidateToken(tokenString string) (*Claims, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*entities.User, error)
}

// TaskService interface for task management operations
type TaskService interface {
	CreateTask(ctx context.Context, actor string, req CreateTaskRequest) (*entities.Task, error)
	GetTask(ctx context.Context, actor string, id uuid.UUID) (*entities.Task, error)
	UpdateTask(ctx context.Context, actor string, id uuid.UUID, req UpdateTaskRequest) (*entities.Task, error)
	DeleteTask(ctx context.Context, actor string, id uuid.UUID) error
	ListTasks(ctx context.Context, actor string, filter TaskFilter) ([]*entities.Task, error)
}

// Request/Response Types

type IssueOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	OTP      string `json:"otp" validate:"required,len=6,numeric"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresIn   int64          `json:"expires_in"`
	User        *entities.User `json:"user"`
}

// Claims is the verified session subject carried by a bearer token
type Claims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type CreateTaskRequest struct {
	Title       string            `json:"title" validate:"required,max=500"`
	Description *string           `json:"description" validate:"omitempty,max=2000"`
	Assignee    string            `json:"assignee" validate:"required,email"`
	Priority    entities.Priority `json:"priority" validate:"required"`
	Deadline    time.Time         `json:"deadline" validate:"required"`
}

type UpdateTaskRequest struct {
	Title       *string              `json:"title" validate:"omitempty,max=500"`
	Description *string              `json:"description" validate:"omitempty,max=2000"`
	Assignee    *string              `json:"assignee" validate:"omitempty,email"`
	Priority    *entities.Priority   `json:"priority" validate:"omitempty"`
	Status      *entities.TaskStatus `json:"status" validate:"omitempty"`
	Deadline    *time.Time           `json:"deadline"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
