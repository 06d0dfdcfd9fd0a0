package services

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/taskpilot/core/internal/domain/entities"
	"github.com/taskpilot/core/internal/infrastructure/config"
	"github.com/taskpilot/core/internal/infrastructure/logger"
	"github.com/taskpilot/core/internal/ports"
)

// ReminderService scans for tasks nearing their deadline on a fixed cadence
// and dispatches deduplicated reminder mail to both participants. A pass
// that fails, panics or overruns never stops the cadence; the next tick
// starts a fresh pass.
type ReminderService struct {
	taskRepo ports.TaskRepository
	mailer   ports.Mailer
	cfg      config.ReminderConfig
	logger   *logger.Logger

	// passMu guarantees passes never overlap if one outlives the interval
	passMu  sync.Mutex
	metrics reminderMetrics
}

type reminderMetrics struct {
	passes     prometheus.Counter
	candidates prometheus.Counter
	sent       prometheus.Counter
	failures   prometheus.Counter
}

// NewReminderService creates a new reminder service. The registerer may be
// nil when metrics are disabled.
func NewReminderService(taskRepo ports.TaskRepository, mailer ports.Mailer, cfg config.ReminderConfig, reg prometheus.Registerer, appLogger *logger.Logger) *ReminderService {
	m := reminderMetrics{
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reminder_passes_total",
			Help: "Total number of completed reminder scan passes",
		}),
		candidates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reminder_candidate_tasks_total",
			Help: "Total number of tasks returned by the candidate query",
		}),
		sent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reminder_notifications_sent_total",
			Help: "Total number of tasks marked reminded",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reminder_delivery_failures_total",
			Help: "Total number of failed reminder deliveries",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.passes, m.candidates, m.sent, m.failures)
	}

	return &ReminderService{
		taskRepo: taskRepo,
		mailer:   mailer,
		cfg:      cfg,
		logger:   appLogger.WithComponent("reminder"),
		metrics:  m,
	}
}

// Run drives the recurring scan until the context is cancelled. Intended to
// be started in its own goroutine at process start.
func (s *ReminderService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.logger.Infow("Reminder scheduler started", "interval", s.cfg.Interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Reminder scheduler stopped")
			return
		case <-ticker.C:
			s.runGuarded(ctx)
		}
	}
}

// runGuarded runs one pass unless the previous one is still going, and
// absorbs anything the pass throws so the cadence survives.
func (s *ReminderService) runGuarded(ctx context.Context) {
	if !s.passMu.TryLock() {
		s.logger.Warn("Previous reminder pass still running, skipping this tick")
		return
	}
	defer s.passMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorw("Reminder pass panicked", "panic", r)
		}
	}()

	if err := s.RunOnce(ctx, time.Now()); err != nil {
		s.logger.Errorw("Reminder pass failed", "error", err)
	}
}

// RunOnce performs a single scan at the given instant: pull candidates,
// apply priority eligibility, deliver, and write back reminder state.
func (s *ReminderService) RunOnce(ctx context.Context, now time.Time) error {
	horizon := now.Add(s.cfg.Horizon)
	cooldownFloor := now.Add(-s.cfg.Cooldown)

	tasks, err := s.taskRepo.ListDueForReminder(ctx, now, horizon, cooldownFloor)
	if err != nil {
		return err
	}

	s.metrics.passes.Inc()
	s.metrics.candidates.Add(float64(len(tasks)))

	if len(tasks) > 0 {
		s.logger.Infow("Reminder candidates found", "count", len(tasks))
	}

	for _, task := range tasks {
		if !task.ReminderDue(now) {
			continue
		}
		// A single task's failure must not break the rest of the pass.
		if err := s.remind(ctx, task, now); err != nil {
			s.logger.Errorw("Failed to process reminder",
				"task_id", task.ID, "title", task.Title, "error", err)
		}
	}

	return nil
}

// remind delivers to assignee and assignor independently. One successful
// delivery is enough to mark the task reminded; if both fail the task stays
// untouched and remains a candidate on the next cycle.
func (s *ReminderService) remind(ctx context.Context, task *entities.Task, now time.Time) error {
	subject := reminderSubject(task)
	body := reminderBody(task)

	assigneeOK := s.deliver(ctx, task.Assignee, subject, body)
	assignorOK := s.deliver(ctx, task.Assignor, subject, body)

	if !assigneeOK && !assignorOK {
		s.logger.Warnw("All reminder deliveries failed, task stays pending",
			"task_id", task.ID, "title", task.Title)
		return nil
	}

	if err := s.taskRepo.MarkReminded(ctx, task.ID, now); err != nil {
		return err
	}

	s.metrics.sent.Inc()
	s.logger.Infow("Reminder sent",
		"task_id", task.ID,
		"title", task.Title,
		"priority", task.Priority,
		"assignee_delivered", assigneeOK,
		"assignor_delivered", assignorOK,
	)
	return nil
}

// deliver sends one mail bounded by the configured timeout so a slow
// recipient cannot stall the whole pass.
func (s *ReminderService) deliver(ctx context.Context, to, subject, body string) bool {
	if to == "" {
		return false
	}

	sendCtx := ctx
	if s.cfg.DeliverTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, s.cfg.DeliverTimeout)
		defer cancel()
	}

	if err := s.mailer.Send(sendCtx, to, subject, body); err != nil {
		s.metrics.failures.Inc()
		s.logger.Warnw("Reminder delivery failed", "to", to, "error", err)
		return false
	}

	return true
}
