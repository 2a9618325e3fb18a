package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/store"
	"github.com/MKhiriev/go-task-keeper/internal/utils"
	"github.com/MKhiriev/go-task-keeper/models"
)

// taskService is the concrete implementation of TaskService. Every mutation
// goes through the repository first; only mutations that actually landed are
// broadcast to subscribers, so an event channel never sees a write the
// database rejected.
type taskService struct {
	taskRepository store.TaskRepository
	uuidGenerator  *utils.UUIDGenerator
	hub            *eventHub

	logger *logger.Logger
}

// NewTaskService constructs a TaskService wired to the given TaskRepository.
func NewTaskService(taskRepository store.TaskRepository, logger *logger.Logger) TaskService {
	return &taskService{
		taskRepository: taskRepository,
		uuidGenerator:  utils.NewUUIDGenerator(),
		hub:            newEventHub(logger),
		logger:         logger,
	}
}

// GetTasks returns every task owned by userID, newest first.
func (t *taskService) GetTasks(ctx context.Context, userID int64) ([]models.Task, error) {
	return t.taskRepository.GetAllTasks(ctx, userID)
}

// CreateTask validates the draft, assigns a fresh server identifier, persists
// the task and notifies the owner's subscribers.
//
// Returns ErrEmptyTitle when the title is blank after trimming.
func (t *taskService) CreateTask(ctx context.Context, userID int64, draft models.TaskDraft) (models.Task, error) {
	log := logger.FromContext(ctx)

	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return models.Task{}, ErrEmptyTitle
	}

	task := models.Task{
		ID:        t.uuidGenerator.Generate(),
		UserID:    userID,
		Title:     title,
		Completed: draft.Completed,
	}

	saved, err := t.taskRepository.CreateTask(ctx, task)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("task creation ended with error")
		return models.Task{}, fmt.Errorf("task creation ended with error: %w", err)
	}

	t.hub.Broadcast(userID, models.TaskEvent{Kind: models.EventInsert, Task: saved})

	return saved, nil
}

// UpdateTask applies the patch to the task identified by id and notifies the
// owner's subscribers.
//
// Returns ErrEmptyPatch when the patch changes nothing, ErrEmptyTitle when it
// would blank the title, and the repository's store.ErrTaskNotFound (wrapped)
// when the task does not exist.
func (t *taskService) UpdateTask(ctx context.Context, userID int64, id string, patch models.TaskPatch) (models.Task, error) {
	log := logger.FromContext(ctx)

	if patch.IsEmpty() {
		return models.Task{}, ErrEmptyPatch
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return models.Task{}, ErrEmptyTitle
	}

	updated, err := t.taskRepository.UpdateTask(ctx, id, userID, patch)
	if err != nil {
		log.Err(err).Str("id", id).Int64("user_id", userID).Msg("task update ended with error")
		return models.Task{}, fmt.Errorf("task update ended with error: %w", err)
	}

	t.hub.Broadcast(userID, models.TaskEvent{Kind: models.EventUpdate, Task: updated})

	return updated, nil
}

// DeleteTask removes the task identified by id and notifies the owner's
// subscribers.
func (t *taskService) DeleteTask(ctx context.Context, userID int64, id string) error {
	log := logger.FromContext(ctx)

	if err := t.taskRepository.DeleteTask(ctx, id, userID); err != nil {
		log.Err(err).Str("id", id).Int64("user_id", userID).Msg("task deletion ended with error")
		return fmt.Errorf("task deletion ended with error: %w", err)
	}

	t.hub.Broadcast(userID, models.TaskEvent{Kind: models.EventDelete, TaskID: id})

	return nil
}

// Subscribe implements TaskService by delegating to the event hub.
func (t *taskService) Subscribe(userID int64) (<-chan models.TaskEvent, func()) {
	return t.hub.Subscribe(userID)
}
