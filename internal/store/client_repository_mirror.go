package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/models"
)

// taskMirrorRepository is the SQLite-backed implementation of [TaskMirror].
// Snapshots are replaced wholesale inside a transaction so a crash never
// leaves a half-written mirror behind.
type taskMirrorRepository struct {
	*DB
	logger *logger.Logger
}

// NewTaskMirrorRepository constructs a [TaskMirror] backed by the provided
// local database connection and logger.
func NewTaskMirrorRepository(db *DB, logger *logger.Logger) TaskMirror {
	return &taskMirrorRepository{
		DB:     db,
		logger: logger,
	}
}

// SaveSnapshot atomically replaces the stored task set of userID.
func (m *taskMirrorRepository) SaveSnapshot(ctx context.Context, userID int64, tasks []models.Task) error {
	log := logger.FromContext(ctx)

	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "taskMirrorRepository.SaveSnapshot").
			Int64("user_id", userID).
			Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteSnapshot, userID); err != nil {
		log.Err(err).
			Str("func", "taskMirrorRepository.SaveSnapshot").
			Int64("user_id", userID).
			Msg("failed to clear previous snapshot")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	for _, task := range tasks {
		_, execErr := tx.ExecContext(ctx, insertSnapshotTask,
			task.ID,
			userID,
			task.Title,
			task.Completed,
			task.CreatedAt,
			task.UpdatedAt,
		)
		if execErr != nil {
			log.Err(execErr).
				Str("func", "taskMirrorRepository.SaveSnapshot").
				Int64("user_id", userID).
				Str("id", task.ID).
				Msg("failed to insert snapshot task")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, execErr)
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).
			Str("func", "taskMirrorRepository.SaveSnapshot").
			Int64("user_id", userID).
			Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}

	return nil
}

// LoadSnapshot returns the stored task set of userID, newest first.
//
// A damaged mirror is treated as empty: any query or scan failure is logged
// and an empty slice is returned, so the caller can always render something.
func (m *taskMirrorRepository) LoadSnapshot(ctx context.Context, userID int64) ([]models.Task, error) {
	log := logger.FromContext(ctx)

	rows, err := m.DB.QueryContext(ctx, selectSnapshot, userID)
	if err != nil {
		log.Warn().Err(err).
			Str("func", "taskMirrorRepository.LoadSnapshot").
			Int64("user_id", userID).
			Msg("snapshot unreadable, treating mirror as empty")
		return []models.Task{}, nil
	}
	defer rows.Close()

	tasks := make([]models.Task, 0, 50)

	for rows.Next() {
		var task models.Task

		scanErr := rows.Scan(
			&task.ID,
			&task.UserID,
			&task.Title,
			&task.Completed,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if scanErr != nil {
			log.Warn().Err(scanErr).
				Str("func", "taskMirrorRepository.LoadSnapshot").
				Int64("user_id", userID).
				Msg("corrupt snapshot row, treating mirror as empty")
			return []models.Task{}, nil
		}

		tasks = append(tasks, task)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Warn().Err(rowsErr).
			Str("func", "taskMirrorRepository.LoadSnapshot").
			Int64("user_id", userID).
			Msg("snapshot iteration failed, treating mirror as empty")
		return []models.Task{}, nil
	}

	return tasks, nil
}
