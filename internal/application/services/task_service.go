package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/taskpilot/core/internal/domain/entities"
	"github.com/taskpilot/core/internal/infrastructure/logger"
	"github.com/taskpilot/core/internal/ports"
)

// TaskService handles task management operations. The actor is the
// authenticated address from the session; participant checks run against
// plain addresses, dangling references are tolerated.
type TaskService struct {
	taskRepo ports.TaskRepository
	logger   *logger.Logger
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo ports.TaskRepository, appLogger *logger.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		logger:   appLogger.WithComponent("tasks"),
	}
}

// CreateTask creates a task with the actor as assignor
func (s *TaskService) CreateTask(ctx context.Context, actor string, req ports.CreateTaskRequest) (*entities.Task, error) {
	if !req.Priority.IsValid() {
		return nil, fmt.Errorf("%w: unknown priority %q", entities.ErrValidation, req.Priority)
	}

	task := &entities.Task{
		Title:       req.Title,
		Description: req.Description,
		Assignor:    actor,
		Assignee:    req.Assignee,
		Priority:    req.Priority,
		Status:      entities.TaskStatusTodo,
		Deadline:    req.Deadline,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Infow("Task created", "task_id", task.ID, "assignor", task.Assignor, "assignee", task.Assignee)
	return task, nil
}

// GetTask returns a task if the actor participates in it
func (s *TaskService) GetTask(ctx context.Context, actor string, id uuid.UUID) (*entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !task.IsParticipant(actor) {
		return nil, entities.ErrForbidden
	}

	return task, nil
}

// UpdateTask applies a partial patch. Either participant may edit;
// overlapping writes resolve last-writer-wins.
func (s *TaskService) UpdateTask(ctx context.Context, actor string, id uuid.UUID, req ports.UpdateTaskRequest) (*entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !task.IsParticipant(actor) {
		return nil, entities.ErrForbidden
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.Assignee != nil {
		task.Assignee = *req.Assignee
	}
	if req.Priority != nil {
		if !req.Priority.IsValid() {
			return nil, fmt.Errorf("%w: unknown priority %q", entities.ErrValidation, *req.Priority)
		}
		task.Priority = *req.Priority
	}
	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, fmt.Errorf("%w: unknown status %q", entities.ErrValidation, *req.Status)
		}
		task.Status = *req.Status
	}
	if req.Deadline != nil {
		task.Deadline = *req.Deadline
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.Infow("Task updated", "task_id", task.ID, "actor", actor)
	return task, nil
}

// DeleteTask removes a task; only the assignor may delete
func (s *TaskService) DeleteTask(ctx context.Context, actor string, id uuid.UUID) error {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if task.Assignor != actor {
		return entities.ErrForbidden
	}

	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.logger.Infow("Task deleted", "task_id", id, "actor", actor)
	return nil
}

// ListTasks lists tasks the actor participates in
func (s *TaskService) ListTasks(ctx context.Context, actor string, filter ports.TaskFilter) ([]*entities.Task, error) {
	tasks, err := s.taskRepo.ListForParticipant(ctx, actor, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}
