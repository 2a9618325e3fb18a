package store

import (
	"context"

	"github.com/MKhiriev/go-task-keeper/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_store_mock.go -package=mock

// TaskMirror is the durable local copy of the last known task set.
// The mirror is what the client renders from when the server is unreachable.
type TaskMirror interface {
	// SaveSnapshot atomically replaces the stored task set of userID with
	// tasks. An empty slice clears the mirror.
	SaveSnapshot(ctx context.Context, userID int64, tasks []models.Task) error

	// LoadSnapshot returns the stored task set of userID, newest first.
	// A missing or unreadable snapshot yields an empty slice, never an
	// error the caller has to special-case.
	LoadSnapshot(ctx context.Context, userID int64) ([]models.Task, error)
}

// MutationQueue is the ordered durable queue of writes made while offline.
type MutationQueue interface {
	// Enqueue appends the mutation and returns it with Seq assigned.
	Enqueue(ctx context.Context, userID int64, mutation models.Mutation) (models.Mutation, error)

	// PeekAll returns every pending mutation in enqueue order without
	// removing anything.
	PeekAll(ctx context.Context, userID int64) ([]models.Mutation, error)

	// Remove deletes the single pending mutation carrying seq. Removing a
	// seq that is no longer queued is not an error.
	Remove(ctx context.Context, userID int64, seq int64) error

	// Clear removes every pending mutation of userID.
	Clear(ctx context.Context, userID int64) error

	// AmendCreate folds patch into the queued create that carries tempID.
	// Returns false when no such create is queued.
	AmendCreate(ctx context.Context, userID int64, tempID string, patch models.TaskPatch) (bool, error)

	// DropCreate voids the queued create carrying tempID (the task was
	// deleted before it ever reached the server). Returns false when no
	// such create is queued.
	DropCreate(ctx context.Context, userID int64, tempID string) (bool, error)
}

// SessionRepository persists the authenticated session across client restarts.
type SessionRepository interface {
	// SaveSession stores the session, replacing any previous one.
	SaveSession(ctx context.Context, session models.Session) error

	// GetSession returns the stored session or [ErrLocalSessionNotFound].
	GetSession(ctx context.Context) (models.Session, error)

	// DeleteSession discards the stored session. Deleting a non-existent
	// session is not an error.
	DeleteSession(ctx context.Context) error
}
