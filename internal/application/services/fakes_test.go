package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskpilot/core/internal/domain/entities"
	"github.com/taskpilot/core/internal/ports"
)

// sentMail captures one delivery accepted by the fake mailer
type sentMail struct {
	To      string
	Subject string
	Body    string
}

// fakeMailer records deliveries and can be told to fail per recipient or
// globally.
type fakeMailer struct {
	mu       sync.Mutex
	sent     []sentMail
	failAll  bool
	failFor  map[string]bool
	failWith error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{failFor: make(map[string]bool)}
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAll || m.failFor[to] {
		if m.failWith != nil {
			return m.failWith
		}
		return entities.ErrDeliveryFailed
	}

	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func (m *fakeMailer) sentTo(to string) []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []sentMail
	for _, s := range m.sent {
		if s.To == to {
			out = append(out, s)
		}
	}
	return out
}

func (m *fakeMailer) lastSent() *sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sent) == 0 {
		return nil
	}
	s := m.sent[len(m.sent)-1]
	return &s
}

// memOTPRepo is an in-memory OTPRepository honoring the newest-first
// contract of LatestByEmail.
type memOTPRepo struct {
	mu      sync.Mutex
	records []*entities.OTPRecord
	nextID  int64
}

func newMemOTPRepo() *memOTPRepo {
	return &memOTPRepo{}
}

func (r *memOTPRepo) Create(ctx context.Context, record *entities.OTPRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	record.ID = r.nextID
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	clone := *record
	r.records = append(r.records, &clone)
	return nil
}

func (r *memOTPRepo) LatestByEmail(ctx context.Context, email string) (*entities.OTPRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var latest *entities.OTPRecord
	for _, rec := range r.records {
		if rec.Email != email {
			continue
		}
		if latest == nil || rec.CreatedAt.After(latest.CreatedAt) ||
			(rec.CreatedAt.Equal(latest.CreatedAt) && rec.ID > latest.ID) {
			latest = rec
		}
	}

	if latest == nil {
		return nil, entities.ErrNoActiveOTP
	}
	clone := *latest
	return &clone, nil
}

func (r *memOTPRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var kept []*entities.OTPRecord
	var deleted int64
	for _, rec := range r.records {
		if rec.CreatedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	r.records = kept
	return deleted, nil
}

// backdateLatest rewinds the newest record's createdAt, for expiry tests
func (r *memOTPRepo) backdateLatest(email string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var latest *entities.OTPRecord
	for _, rec := range r.records {
		if rec.Email == email && (latest == nil || rec.CreatedAt.After(latest.CreatedAt)) {
			latest = rec
		}
	}
	if latest != nil {
		latest.CreatedAt = latest.CreatedAt.Add(-d)
	}
}

// memUserRepo is an in-memory UserRepository keyed by email
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*entities.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*entities.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Email]; exists {
		return entities.ErrDuplicateEmail
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.Email] = &clone
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[email]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *memUserRepo) List(ctx context.Context, limit, offset int) ([]*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entities.User
	for _, u := range r.users {
		clone := *u
		out = append(out, &clone)
	}
	return out, nil
}

// memTaskRepo is an in-memory TaskRepository whose ListDueForReminder
// mirrors the documented candidate query.
type memTaskRepo struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*entities.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: make(map[uuid.UUID]*entities.Task)}
}

func (r *memTaskRepo) Create(ctx context.Context, task *entities.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	clone := *task
	r.tasks[task.ID] = &clone
	return nil
}

func (r *memTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, entities.ErrTaskNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *memTaskRepo) Update(ctx context.Context, task *entities.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[task.ID]; !ok {
		return entities.ErrTaskNotFound
	}
	task.UpdatedAt = time.Now()
	clone := *task
	r.tasks[task.ID] = &clone
	return nil
}

func (r *memTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return entities.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *memTaskRepo) ListForParticipant(ctx context.Context, email string, filter ports.TaskFilter) ([]*entities.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entities.Task
	for _, t := range r.tasks {
		if !t.IsParticipant(email) {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		clone := *t
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memTaskRepo) ListDueForReminder(ctx context.Context, now, horizon, cooldownFloor time.Time) ([]*entities.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entities.Task
	for _, t := range r.tasks {
		if t.Status.IsTerminal() {
			continue
		}
		if t.Deadline.Before(now) || t.Deadline.After(horizon) {
			continue
		}
		if t.ReminderSent && (t.LastReminderDate == nil || t.LastReminderDate.After(cooldownFloor)) {
			continue
		}
		clone := *t
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memTaskRepo) MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return entities.ErrTaskNotFound
	}
	t.ReminderSent = true
	reminded := at
	t.LastReminderDate = &reminded
	return nil
}

// stubOTPService satisfies ports.OTPService with canned results
type stubOTPService struct {
	verifyErr error
	issueErr  error
}

func (s *stubOTPService) Issue(ctx context.Context, email string) error {
	return s.issueErr
}

func (s *stubOTPService) Verify(ctx context.Context, email, code string) error {
	return s.verifyErr
}
