package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrNoActiveOTP        = errors.New("no active otp for this address")
	ErrInvalidOTP         = errors.New("otp does not match")
	ErrOTPThrottled       = errors.New("otp requested too recently")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrMissingToken       = errors.New("authentication token is missing")
	ErrForbidden          = errors.New("operation not permitted")
	ErrDeliveryFailed     = errors.New("notification delivery failed")
	ErrValidation         = errors.New("validation failed")
)

// Enums and types
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusAbandoned  TaskStatus = "abandoned"
)

// IsTerminal reports whether a task in this status has permanently left
// the reminder candidate set.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusDone || s == TaskStatusAbandoned
}

// IsValid reports whether the status is one of the known values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone, TaskStatusAbandoned:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid reports whether the priority is one of the known values.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ReminderWindow returns how close to its deadline a task of this priority
// must be before a reminder goes out. The second return is false for
// priorities that never trigger reminders.
func (p Priority) ReminderWindow() (time.Duration, bool) {
	switch p {
	case PriorityUrgent:
		return 4 * time.Hour, true
	case PriorityHigh:
		return 12 * time.Hour, true
	case PriorityNormal:
		return 24 * time.Hour, true
	case PriorityLow:
		return 48 * time.Hour, true
	}
	return 0, false
}

// User represents a registered account
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	FullName     string    `json:"full_name" db:"full_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// OTPRecord is a stored one-time passcode. Only the hash is persisted; a
// stored record implies the plaintext code was dispatched to the address.
// Multiple live records per address may exist; verification always runs
// against the newest one.
type OTPRecord struct {
	ID        int64     `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	CodeHash  string    `json:"-" db:"code_hash"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Task represents a task in the system. Assignor and assignee are plain
// addresses, not user references; dangling participants are tolerated.
type Task struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	Title            string     `json:"title" db:"title"`
	Description      *string    `json:"description" db:"description"`
	Assignor         string     `json:"assignor" db:"assignor"`
	Assignee         string     `json:"assignee" db:"assignee"`
	Priority         Priority   `json:"priority" db:"priority"`
	Status           TaskStatus `json:"status" db:"status"`
	Deadline         time.Time  `json:"deadline" db:"deadline"`
	ReminderSent     bool       `json:"reminder_sent" db:"reminder_sent"`
	LastReminderDate *time.Time `json:"last_reminder_date" db:"last_reminder_date"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// IsParticipant reports whether the address is the task's assignor or
// assignee.
func (t *Task) IsParticipant(email string) bool {
	return t.Assignor == email || t.Assignee == email
}

// ReminderDue reports whether the task is inside its priority's eligibility
// window at the given instant. The deadline/status/cooldown candidacy
// conditions are applied by the store query, not here.
func (t *Task) ReminderDue(now time.Time) bool {
	window, ok := t.Priority.ReminderWindow()
	if !ok {
		return false
	}
	untilDeadline := t.Deadline.Sub(now)
	if untilDeadline < 0 {
		return false
	}
	return untilDeadline <= window
}
