// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"
	"time"

	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/store"
	"github.com/MKhiriev/go-task-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─────────────────────────────────────────────
// Mock: store.TaskRepository
// ─────────────────────────────────────────────

type mockTaskRepository struct {
	getAllFn func(ctx context.Context, userID int64) ([]models.Task, error)
	getFn    func(ctx context.Context, id string, userID int64) (models.Task, error)
	createFn func(ctx context.Context, task models.Task) (models.Task, error)
	updateFn func(ctx context.Context, id string, userID int64, patch models.TaskPatch) (models.Task, error)
	deleteFn func(ctx context.Context, id string, userID int64) error
}

func (m *mockTaskRepository) GetAllTasks(ctx context.Context, userID int64) ([]models.Task, error) {
	if m.getAllFn != nil {
		return m.getAllFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockTaskRepository) GetTask(ctx context.Context, id string, userID int64) (models.Task, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id, userID)
	}
	return models.Task{}, nil
}

func (m *mockTaskRepository) CreateTask(ctx context.Context, task models.Task) (models.Task, error) {
	if m.createFn != nil {
		return m.createFn(ctx, task)
	}
	return task, nil
}

func (m *mockTaskRepository) UpdateTask(ctx context.Context, id string, userID int64, patch models.TaskPatch) (models.Task, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, userID, patch)
	}
	return models.Task{}, nil
}

func (m *mockTaskRepository) DeleteTask(ctx context.Context, id string, userID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, userID)
	}
	return nil
}

// receiveEvent ждёт одно событие из канала подписчика.
func receiveEvent(t *testing.T, events <-chan models.TaskEvent) models.TaskEvent {
	t.Helper()
	select {
	case event := <-events:
		return event
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return models.TaskEvent{}
	}
}

// ── GetTasks ─────────────────────────────────────────────────────────────────

func TestTaskService_GetTasks(t *testing.T) {
	want := []models.Task{{ID: "a", Title: "Buy milk"}}
	repo := &mockTaskRepository{
		getAllFn: func(_ context.Context, userID int64) ([]models.Task, error) {
			assert.Equal(t, int64(1), userID)
			return want, nil
		},
	}
	svc := NewTaskService(repo, logger.Nop())

	tasks, err := svc.GetTasks(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, want, tasks)
}

// ── CreateTask ───────────────────────────────────────────────────────────────

func TestTaskService_CreateTask_Success(t *testing.T) {
	var persisted models.Task
	repo := &mockTaskRepository{
		createFn: func(_ context.Context, task models.Task) (models.Task, error) {
			persisted = task
			task.CreatedAt = time.Now().UTC()
			return task, nil
		},
	}
	svc := NewTaskService(repo, logger.Nop())

	task, err := svc.CreateTask(context.Background(), 1, models.TaskDraft{Title: "  Buy milk  "})
	require.NoError(t, err)

	// заголовок обрезан, id выдаёт сервис, владелец из аргумента
	assert.Equal(t, "Buy milk", task.Title)
	assert.NotEmpty(t, persisted.ID)
	assert.False(t, persisted.IsTemp())
	assert.Equal(t, int64(1), persisted.UserID)
}

func TestTaskService_CreateTask_EmptyTitle(t *testing.T) {
	svc := NewTaskService(&mockTaskRepository{}, logger.Nop())

	_, err := svc.CreateTask(context.Background(), 1, models.TaskDraft{Title: "   "})
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestTaskService_CreateTask_BroadcastsInsert(t *testing.T) {
	svc := NewTaskService(&mockTaskRepository{}, logger.Nop())

	events, cancel := svc.Subscribe(1)
	defer cancel()

	created, err := svc.CreateTask(context.Background(), 1, models.TaskDraft{Title: "Buy milk"})
	require.NoError(t, err)

	event := receiveEvent(t, events)
	assert.Equal(t, models.EventInsert, event.Kind)
	assert.Equal(t, created.ID, event.Task.ID)
}

func TestTaskService_CreateTask_NoBroadcastOnFailure(t *testing.T) {
	repo := &mockTaskRepository{
		createFn: func(_ context.Context, _ models.Task) (models.Task, error) {
			return models.Task{}, store.ErrTaskNotSaved
		},
	}
	svc := NewTaskService(repo, logger.Nop())

	events, cancel := svc.Subscribe(1)
	defer cancel()

	_, err := svc.CreateTask(context.Background(), 1, models.TaskDraft{Title: "Buy milk"})
	require.ErrorIs(t, err, store.ErrTaskNotSaved)

	// отвергнутая запись не должна попасть подписчикам
	select {
	case event := <-events:
		t.Fatalf("unexpected event broadcast: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

// ── UpdateTask ───────────────────────────────────────────────────────────────

func TestTaskService_UpdateTask_Success(t *testing.T) {
	repo := &mockTaskRepository{
		updateFn: func(_ context.Context, id string, userID int64, patch models.TaskPatch) (models.Task, error) {
			assert.Equal(t, "a", id)
			assert.Equal(t, int64(1), userID)
			return models.Task{ID: id, UserID: userID, Title: *patch.Title}, nil
		},
	}
	svc := NewTaskService(repo, logger.Nop())

	events, cancel := svc.Subscribe(1)
	defer cancel()

	title := "Buy oat milk"
	updated, err := svc.UpdateTask(context.Background(), 1, "a", models.TaskPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", updated.Title)

	event := receiveEvent(t, events)
	assert.Equal(t, models.EventUpdate, event.Kind)
	assert.Equal(t, "a", event.Task.ID)
}

func TestTaskService_UpdateTask_EmptyPatch(t *testing.T) {
	svc := NewTaskService(&mockTaskRepository{}, logger.Nop())

	_, err := svc.UpdateTask(context.Background(), 1, "a", models.TaskPatch{})
	assert.ErrorIs(t, err, ErrEmptyPatch)
}

func TestTaskService_UpdateTask_BlankTitle(t *testing.T) {
	svc := NewTaskService(&mockTaskRepository{}, logger.Nop())

	blank := "  "
	_, err := svc.UpdateTask(context.Background(), 1, "a", models.TaskPatch{Title: &blank})
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestTaskService_UpdateTask_NotFound(t *testing.T) {
	repo := &mockTaskRepository{
		updateFn: func(_ context.Context, _ string, _ int64, _ models.TaskPatch) (models.Task, error) {
			return models.Task{}, store.ErrTaskNotFound
		},
	}
	svc := NewTaskService(repo, logger.Nop())

	title := "x"
	_, err := svc.UpdateTask(context.Background(), 1, "missing", models.TaskPatch{Title: &title})
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

// ── DeleteTask ───────────────────────────────────────────────────────────────

func TestTaskService_DeleteTask_Success(t *testing.T) {
	repo := &mockTaskRepository{
		deleteFn: func(_ context.Context, id string, userID int64) error {
			assert.Equal(t, "a", id)
			assert.Equal(t, int64(1), userID)
			return nil
		},
	}
	svc := NewTaskService(repo, logger.Nop())

	events, cancel := svc.Subscribe(1)
	defer cancel()

	require.NoError(t, svc.DeleteTask(context.Background(), 1, "a"))

	event := receiveEvent(t, events)
	assert.Equal(t, models.EventDelete, event.Kind)
	assert.Equal(t, "a", event.TaskID)
}

func TestTaskService_DeleteTask_NotFound(t *testing.T) {
	repo := &mockTaskRepository{
		deleteFn: func(_ context.Context, _ string, _ int64) error {
			return store.ErrTaskNotFound
		},
	}
	svc := NewTaskService(repo, logger.Nop())

	err := svc.DeleteTask(context.Background(), 1, "missing")
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}
