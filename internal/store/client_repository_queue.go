package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/models"
)

// mutationQueueRepository is the SQLite-backed implementation of
// [MutationQueue]. Ordering is provided by the AUTOINCREMENT seq column:
// mutations are replayed in exactly the order they were enqueued.
type mutationQueueRepository struct {
	*DB
	logger *logger.Logger
}

// NewMutationQueueRepository constructs a [MutationQueue] backed by the
// provided local database connection and logger.
func NewMutationQueueRepository(db *DB, logger *logger.Logger) MutationQueue {
	return &mutationQueueRepository{
		DB:     db,
		logger: logger,
	}
}

// Enqueue appends the mutation to the queue and returns it with the
// storage-assigned Seq populated.
func (q *mutationQueueRepository) Enqueue(ctx context.Context, userID int64, mutation models.Mutation) (models.Mutation, error) {
	log := logger.FromContext(ctx)

	payload, err := json.Marshal(mutation.Payload)
	if err != nil {
		log.Err(err).
			Str("func", "mutationQueueRepository.Enqueue").
			Int64("user_id", userID).
			Msg("failed to encode mutation payload")
		return models.Mutation{}, fmt.Errorf("failed to encode mutation payload: %w", err)
	}

	result, execErr := q.DB.ExecContext(ctx, insertMutation,
		userID,
		string(mutation.Kind),
		mutation.TempID,
		mutation.ID,
		mutation.Title,
		string(payload),
		mutation.EnqueuedAt,
	)
	if execErr != nil {
		log.Err(execErr).
			Str("func", "mutationQueueRepository.Enqueue").
			Int64("user_id", userID).
			Str("kind", string(mutation.Kind)).
			Msg("failed to enqueue mutation")
		return models.Mutation{}, fmt.Errorf("%w: %w", ErrExecutingStatement, execErr)
	}

	seq, idErr := result.LastInsertId()
	if idErr != nil {
		log.Err(idErr).
			Str("func", "mutationQueueRepository.Enqueue").
			Int64("user_id", userID).
			Msg("failed to read assigned seq")
		return models.Mutation{}, fmt.Errorf("%w: %w", ErrExecutingStatement, idErr)
	}

	mutation.Seq = seq
	return mutation, nil
}

// PeekAll returns every pending mutation of userID in enqueue order without
// removing anything from the queue.
func (q *mutationQueueRepository) PeekAll(ctx context.Context, userID int64) ([]models.Mutation, error) {
	log := logger.FromContext(ctx)

	rows, err := q.DB.QueryContext(ctx, selectMutations, userID)
	if err != nil {
		log.Err(err).
			Str("func", "mutationQueueRepository.PeekAll").
			Int64("user_id", userID).
			Msg("failed to query pending mutations")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	mutations := make([]models.Mutation, 0, 16)

	for rows.Next() {
		var (
			mutation models.Mutation
			kind     string
			payload  string
		)

		scanErr := rows.Scan(
			&mutation.Seq,
			&kind,
			&mutation.TempID,
			&mutation.ID,
			&mutation.Title,
			&payload,
			&mutation.EnqueuedAt,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "mutationQueueRepository.PeekAll").
				Int64("user_id", userID).
				Msg("failed to scan mutation row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		mutation.Kind = models.MutationKind(kind)
		if decodeErr := json.Unmarshal([]byte(payload), &mutation.Payload); decodeErr != nil {
			log.Err(decodeErr).
				Str("func", "mutationQueueRepository.PeekAll").
				Int64("seq", mutation.Seq).
				Msg("failed to decode mutation payload")
			return nil, fmt.Errorf("failed to decode mutation payload: %w", decodeErr)
		}

		mutations = append(mutations, mutation)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "mutationQueueRepository.PeekAll").
			Int64("user_id", userID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return mutations, nil
}

// Remove deletes the single pending mutation carrying seq. The replay loop
// calls it after each mutation reaches the server, so an aborted pass never
// re-sends what was already delivered.
func (q *mutationQueueRepository) Remove(ctx context.Context, userID int64, seq int64) error {
	log := logger.FromContext(ctx)

	if _, err := q.DB.ExecContext(ctx, deleteMutation, userID, seq); err != nil {
		log.Err(err).
			Str("func", "mutationQueueRepository.Remove").
			Int64("user_id", userID).
			Int64("seq", seq).
			Msg("failed to remove pending mutation")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// Clear removes every pending mutation of userID in a single statement.
func (q *mutationQueueRepository) Clear(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx)

	if _, err := q.DB.ExecContext(ctx, clearMutations, userID); err != nil {
		log.Err(err).
			Str("func", "mutationQueueRepository.Clear").
			Int64("user_id", userID).
			Msg("failed to clear pending mutations")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// AmendCreate folds patch into the queued create carrying tempID, so that an
// edit made while the task is still temporary travels with its create instead
// of producing a second queue entry the server could not resolve.
//
// Returns false when no create for tempID is queued.
func (q *mutationQueueRepository) AmendCreate(ctx context.Context, userID int64, tempID string, patch models.TaskPatch) (bool, error) {
	log := logger.FromContext(ctx)

	var (
		seq     int64
		title   string
		payload string
	)

	row := q.DB.QueryRowContext(ctx, selectQueuedCreate, userID, tempID)
	if err := row.Scan(&seq, &title, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		log.Err(err).
			Str("func", "mutationQueueRepository.AmendCreate").
			Str("temp_id", tempID).
			Msg("failed to look up queued create")
		return false, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	var stored models.TaskPatch
	if err := json.Unmarshal([]byte(payload), &stored); err != nil {
		log.Err(err).
			Str("func", "mutationQueueRepository.AmendCreate").
			Str("temp_id", tempID).
			Msg("failed to decode queued create payload")
		return false, fmt.Errorf("failed to decode queued create payload: %w", err)
	}

	merged := stored.Merge(patch)
	if patch.Title != nil {
		title = *patch.Title
	}

	encoded, err := json.Marshal(merged)
	if err != nil {
		log.Err(err).
			Str("func", "mutationQueueRepository.AmendCreate").
			Str("temp_id", tempID).
			Msg("failed to encode merged payload")
		return false, fmt.Errorf("failed to encode merged payload: %w", err)
	}

	if _, err := q.DB.ExecContext(ctx, amendQueuedCreate, title, string(encoded), seq); err != nil {
		log.Err(err).
			Str("func", "mutationQueueRepository.AmendCreate").
			Str("temp_id", tempID).
			Int64("seq", seq).
			Msg("failed to amend queued create")
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return true, nil
}

// DropCreate voids the queued create carrying tempID. The task was deleted
// before it ever reached the server, so nothing remains to replay.
//
// Returns false when no create for tempID is queued.
func (q *mutationQueueRepository) DropCreate(ctx context.Context, userID int64, tempID string) (bool, error) {
	log := logger.FromContext(ctx)

	result, err := q.DB.ExecContext(ctx, dropQueuedCreate, userID, tempID)
	if err != nil {
		log.Err(err).
			Str("func", "mutationQueueRepository.DropCreate").
			Str("temp_id", tempID).
			Msg("failed to drop queued create")
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, raErr := result.RowsAffected()
	if raErr != nil {
		log.Err(raErr).
			Str("func", "mutationQueueRepository.DropCreate").
			Str("temp_id", tempID).
			Msg("failed to read affected rows")
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, raErr)
	}

	return affected > 0, nil
}
