package store

import (
	"context"

	"github.com/MKhiriev/go-task-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// UserRepository is the server-side persistence contract for user accounts.
type UserRepository interface {
	// CreateUser persists a new user record and returns it with
	// server-assigned fields (UserID, CreatedAt) populated.
	// Returns [ErrLoginAlreadyExists] if the login is taken.
	CreateUser(ctx context.Context, user models.User) (models.User, error)

	// FindUserByLogin retrieves the user whose Login matches the one in the
	// input value. Returns [ErrNoUserWasFound] if no such user exists.
	FindUserByLogin(ctx context.Context, user models.User) (models.User, error)
}

// TaskRepository is the server-side persistence contract for tasks.
type TaskRepository interface {
	// GetAllTasks returns every task owned by userID ordered by creation
	// time, newest first.
	GetAllTasks(ctx context.Context, userID int64) ([]models.Task, error)

	// GetTask returns the single task identified by id and owned by userID.
	// Returns [ErrTaskNotFound] when there is no match.
	GetTask(ctx context.Context, id string, userID int64) (models.Task, error)

	// CreateTask inserts the task and returns the persisted row with
	// database-assigned timestamps.
	CreateTask(ctx context.Context, task models.Task) (models.Task, error)

	// UpdateTask applies the non-nil patch fields to the task identified by
	// id and owned by userID, stamps updated_at, and returns the updated
	// row. Returns [ErrTaskNotFound] when there is no match.
	UpdateTask(ctx context.Context, id string, userID int64, patch models.TaskPatch) (models.Task, error)

	// DeleteTask removes the task identified by id and owned by userID.
	// Returns [ErrTaskNotFound] when nothing was deleted.
	DeleteTask(ctx context.Context, id string, userID int64) error
}
