package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpilot/core/internal/domain/entities"
	"github.com/taskpilot/core/internal/infrastructure/logger"
	"github.com/taskpilot/core/internal/ports"
)

func newTestTaskService(repo *memTaskRepo) *TaskService {
	return NewTaskService(repo, logger.NewNop())
}

func createTestTask(t *testing.T, svc *TaskService, assignor, assignee string) *entities.Task {
	t.Helper()

	task, err := svc.CreateTask(context.Background(), assignor, ports.CreateTaskRequest{
		Title:    "Write release notes",
		Assignee: assignee,
		Priority: entities.PriorityNormal,
		Deadline: time.Now().Add(72 * time.Hour),
	})
	require.NoError(t, err)
	return task
}

func TestTaskService_CreateTask(t *testing.T) {
	svc := newTestTaskService(newMemTaskRepo())

	task := createTestTask(t, svc, "boss@x.com", "dev@x.com")

	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, "boss@x.com", task.Assignor)
	assert.Equal(t, "dev@x.com", task.Assignee)
	assert.Equal(t, entities.TaskStatusTodo, task.Status)
	assert.False(t, task.ReminderSent)
}

func TestTaskService_CreateTaskRejectsUnknownPriority(t *testing.T) {
	svc := newTestTaskService(newMemTaskRepo())

	_, err := svc.CreateTask(context.Background(), "boss@x.com", ports.CreateTaskRequest{
		Title:    "Bad task",
		Assignee: "dev@x.com",
		Priority: entities.Priority("critical"),
		Deadline: time.Now().Add(time.Hour),
	})
	assert.ErrorIs(t, err, entities.ErrValidation)
}

func TestTaskService_GetTaskParticipantsOnly(t *testing.T) {
	svc := newTestTaskService(newMemTaskRepo())
	ctx := context.Background()

	task := createTestTask(t, svc, "boss@x.com", "dev@x.com")

	for _, actor := range []string{"boss@x.com", "dev@x.com"} {
		got, err := svc.GetTask(ctx, actor, task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.ID, got.ID)
	}

	_, err := svc.GetTask(ctx, "stranger@x.com", task.ID)
	assert.ErrorIs(t, err, entities.ErrForbidden)

	_, err = svc.GetTask(ctx, "boss@x.com", uuid.New())
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
}

func TestTaskService_UpdateTaskPartialPatch(t *testing.T) {
	svc := newTestTaskService(newMemTaskRepo())
	ctx := context.Background()

	task := createTestTask(t, svc, "boss@x.com", "dev@x.com")

	newStatus := entities.TaskStatusInProgress
	got, err := svc.UpdateTask(ctx, "dev@x.com", task.ID, ports.UpdateTaskRequest{Status: &newStatus})
	require.NoError(t, err)

	// Only the patched field moved.
	assert.Equal(t, entities.TaskStatusInProgress, got.Status)
	assert.Equal(t, task.Title, got.Title)
	assert.Equal(t, task.Assignee, got.Assignee)
	assert.True(t, task.Deadline.Equal(got.Deadline))
}

func TestTaskService_UpdateTaskRejectsOutsiderAndBadEnums(t *testing.T) {
	svc := newTestTaskService(newMemTaskRepo())
	ctx := context.Background()

	task := createTestTask(t, svc, "boss@x.com", "dev@x.com")

	title := "hijacked"
	_, err := svc.UpdateTask(ctx, "stranger@x.com", task.ID, ports.UpdateTaskRequest{Title: &title})
	assert.ErrorIs(t, err, entities.ErrForbidden)

	badStatus := entities.TaskStatus("archived")
	_, err = svc.UpdateTask(ctx, "boss@x.com", task.ID, ports.UpdateTaskRequest{Status: &badStatus})
	assert.ErrorIs(t, err, entities.ErrValidation)

	badPriority := entities.Priority("blocker")
	_, err = svc.UpdateTask(ctx, "boss@x.com", task.ID, ports.UpdateTaskRequest{Priority: &badPriority})
	assert.ErrorIs(t, err, entities.ErrValidation)
}

func TestTaskService_DeleteTaskAssignorOnly(t *testing.T) {
	repo := newMemTaskRepo()
	svc := newTestTaskService(repo)
	ctx := context.Background()

	task := createTestTask(t, svc, "boss@x.com", "dev@x.com")

	// The assignee participates but may not delete.
	err := svc.DeleteTask(ctx, "dev@x.com", task.ID)
	assert.ErrorIs(t, err, entities.ErrForbidden)

	require.NoError(t, svc.DeleteTask(ctx, "boss@x.com", task.ID))

	_, err = repo.GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
}

func TestTaskService_ListTasksFilters(t *testing.T) {
	svc := newTestTaskService(newMemTaskRepo())
	ctx := context.Background()

	first := createTestTask(t, svc, "boss@x.com", "dev@x.com")
	createTestTask(t, svc, "other@x.com", "dev@x.com")
	createTestTask(t, svc, "boss@x.com", "someone@x.com")

	done := entities.TaskStatusDone
	_, err := svc.UpdateTask(ctx, "dev@x.com", first.ID, ports.UpdateTaskRequest{Status: &done})
	require.NoError(t, err)

	all, err := svc.ListTasks(ctx, "dev@x.com", ports.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyDone, err := svc.ListTasks(ctx, "dev@x.com", ports.TaskFilter{Status: &done})
	require.NoError(t, err)
	require.Len(t, onlyDone, 1)
	assert.Equal(t, first.ID, onlyDone[0].ID)

	none, err := svc.ListTasks(ctx, "nobody@x.com", ports.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)
}
