package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-task-keeper/internal/config"
	"github.com/MKhiriev/go-task-keeper/internal/logger"
)

// ClientStorages groups all client-side storage repositories into a single
// value that can be passed around the service layer: the durable task mirror,
// the pending-mutation queue and the persisted session.
type ClientStorages struct {
	// TaskMirror is the SQLite-backed durable copy of the last known task set.
	TaskMirror TaskMirror

	// MutationQueue is the ordered queue of writes made while offline.
	MutationQueue MutationQueue

	// SessionRepository persists the authenticated session across restarts.
	SessionRepository SessionRepository
}

// NewClientStorages initialises the client storage layer using the supplied
// configuration and logger. It performs the following steps:
//  1. Opens an SQLite connection to the file path specified in cfg.Local.Path,
//     creating the database file if it does not yet exist.
//  2. Creates the local schema via [DB.MigrateLocal].
//  3. Constructs and returns a [ClientStorages] value wired to fresh
//     repositories sharing the same connection.
//
// Returns an error if the database connection cannot be established or if
// schema creation fails.
func NewClientStorages(cfg config.Storage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new client storages...")

	ctx := context.Background()

	db, err := NewConnectSQLite(ctx, cfg.Local, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.MigrateLocal(ctx); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &ClientStorages{
		TaskMirror:        NewTaskMirrorRepository(db, logger),
		MutationQueue:     NewMutationQueueRepository(db, logger),
		SessionRepository: NewSessionRepository(db, logger),
	}, nil
}
