package service

import (
	"context"

	"github.com/MKhiriev/go-task-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// AuthService handles user registration, credential verification and JWT
// token lifecycle on the server.
type AuthService interface {
	RegisterUser(ctx context.Context, user models.User) (models.User, error)
	Login(ctx context.Context, user models.User) (models.User, error)
	CreateToken(ctx context.Context, user models.User) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// TaskService is the server-side task domain logic: validation, persistence
// and change notification fan-out.
type TaskService interface {
	GetTasks(ctx context.Context, userID int64) ([]models.Task, error)
	CreateTask(ctx context.Context, userID int64, draft models.TaskDraft) (models.Task, error)
	UpdateTask(ctx context.Context, userID int64, id string, patch models.TaskPatch) (models.Task, error)
	DeleteTask(ctx context.Context, userID int64, id string) error

	// Subscribe registers a change-notification channel for userID. The
	// returned cancel function removes the subscription and closes the
	// channel; it is safe to call more than once.
	Subscribe(userID int64) (<-chan models.TaskEvent, func())
}
