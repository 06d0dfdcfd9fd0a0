package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taskpilot/core/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	List(ctx context.Context, limit, offset int) ([]*entities.User, error)
}

// OTPRepository defines the interface for one-time passcode storage.
// LatestByEmail must be a deterministic newest-first lookup; recency is the
// contract that resolves concurrent issuances for one address.
type OTPRepository interface {
	Create(ctx context.Context, record *entities.OTPRecord) error
	LatestByEmail(ctx context.Context, email string) (*entities.OTPRecord, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// TaskRepository defines the interface for task data operations
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error)
	Update(ctx context.Context, task *entities.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListForParticipant(ctx context.Context, email string, filter TaskFilter) ([]*entities.Task, error)
	// ListDueForReminder returns non-terminal tasks whose deadline falls in
	// [now, horizon] and which were either never reminded or last reminded
	// at or before cooldownFloor.
	ListDueForReminder(ctx context.Context, now, horizon, cooldownFloor time.Time) ([]*entities.Task, error)
	MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error
}

// TaskFilter narrows participant task listings
type TaskFilter struct {
	Status   *entities.TaskStatus
	Priority *entities.Priority
	Limit    int
	Offset   int
}
