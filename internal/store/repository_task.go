package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/models"
)

// taskRepository is the PostgreSQL-backed implementation of [TaskRepository].
// It executes all task CRUD operations directly against the "tasks" table
// using the embedded [*DB] connection.
//
// Every public method obtains a context-scoped logger via
// [logger.FromContext] so that all database interactions are traced
// with structured fields (user_id, task id).
type taskRepository struct {
	*DB
	logger *logger.Logger
}

// NewTaskRepository constructs a [TaskRepository] backed by the provided
// database connection and logger.
//
// The logger parameter is stored for fallback logging; most methods prefer
// the context-scoped logger obtained via [logger.FromContext].
func NewTaskRepository(db *DB, logger *logger.Logger) TaskRepository {
	return &taskRepository{
		DB:     db,
		logger: logger,
	}
}

// GetAllTasks retrieves every task owned by the given user, newest first.
//
// Returns an empty slice when no records are found.
func (t *taskRepository) GetAllTasks(ctx context.Context, userID int64) ([]models.Task, error) {
	log := logger.FromContext(ctx)

	rows, queryErr := t.DB.QueryContext(ctx, getAllTasks, userID)
	if queryErr != nil {
		log.Err(queryErr).
			Str("func", "taskRepository.GetAllTasks").
			Int64("user_id", userID).
			Msg("failed to execute query for getting all user tasks")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, queryErr)
	}
	defer rows.Close()

	allTasks := make([]models.Task, 0, 50)

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
			log.Err(scanErr).
				Str("func", "taskRepository.GetAllTasks").
				Int64("user_id", userID).
				Msg("failed to scan task row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		allTasks = append(allTasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Err(err).
			Str("func", "taskRepository.GetAllTasks").
			Int64("user_id", userID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return allTasks, nil
}

// GetTask retrieves the single task identified by id and owned by userID.
//
// Returns [ErrTaskNotFound] when the row does not exist.
func (t *taskRepository) GetTask(ctx context.Context, id string, userID int64) (models.Task, error) {
	log := logger.FromContext(ctx)

	var task models.Task
	row := t.DB.QueryRowContext(ctx, getSingleTask, id, userID)

	if err := row.Scan(&task.ID, &task.UserID, &task.Title, &task.Completed, &task.CreatedAt, &task.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn().
				Str("func", "taskRepository.GetTask").
				Str("id", id).
				Int64("user_id", userID).
				Msg("task not found")
			return models.Task{}, ErrTaskNotFound
		}

		log.Err(err).
			Str("func", "taskRepository.GetTask").
			Str("id", id).
			Msg("failed to scan task row")
		return models.Task{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return task, nil
}

// CreateTask inserts a new task and returns the persisted row with
// database-assigned timestamps populated via the INSERT … RETURNING clause.
func (t *taskRepository) CreateTask(ctx context.Context, task models.Task) (models.Task, error) {
	log := logger.FromContext(ctx)

	log.Debug().
		Str("func", "taskRepository.CreateTask").
		Str("id", task.ID).
		Int64("user_id", task.UserID).
		Msg("saving single task record")

	var saved models.Task
	err := t.DB.QueryRowContext(ctx, createTask,
		task.ID,
		task.UserID,
		task.Title,
		task.Completed,
	).Scan(&saved.ID, &saved.UserID, &saved.Title, &saved.Completed, &saved.CreatedAt, &saved.UpdatedAt)

	if err != nil {
		log.Err(err).
			Str("func", "taskRepository.CreateTask").
			Str("id", task.ID).
			Int64("user_id", task.UserID).
			Msg("failed to save task")
		return models.Task{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return saved, nil
}

// UpdateTask applies a partial update to the task identified by id and owned
// by userID.
//
// The method builds a dynamic UPDATE query via [buildTaskUpdateQuery] so only
// the fields present in the patch appear in the SET clause; updated_at is
// always stamped. The updated row is returned via RETURNING.
//
// Returns [ErrTaskNotFound] when the UPDATE matches no row. An empty patch
// still stamps updated_at, which lets a client confirm the row exists.
func (t *taskRepository) UpdateTask(ctx context.Context, id string, userID int64, patch models.TaskPatch) (models.Task, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildTaskUpdateQuery(id, userID, patch)
	if err != nil {
		log.Err(err).
			Str("func", "taskRepository.UpdateTask").
			Str("id", id).
			Msg("failed to build update query")
		return models.Task{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var updated models.Task
	queryRowErr := t.DB.QueryRowContext(ctx, query, args...).
		Scan(&updated.ID, &updated.UserID, &updated.Title, &updated.Completed, &updated.CreatedAt, &updated.UpdatedAt)
	if queryRowErr != nil {
		if errors.Is(queryRowErr, sql.ErrNoRows) {
			log.Warn().
				Str("func", "taskRepository.UpdateTask").
				Str("id", id).
				Int64("user_id", userID).
				Msg("task not found")
			return models.Task{}, ErrTaskNotFound
		}

		log.Err(queryRowErr).
			Str("func", "taskRepository.UpdateTask").
			Str("id", id).
			Msg("failed to execute update query")
		return models.Task{}, fmt.Errorf("%w: %w", ErrExecutingQuery, queryRowErr)
	}

	log.Info().
		Str("func", "taskRepository.UpdateTask").
		Str("id", id).
		Msg("successfully updated task")

	return updated, nil
}

// DeleteTask removes the task identified by id and owned by userID.
//
// Returns [ErrTaskNotFound] when no row was deleted.
func (t *taskRepository) DeleteTask(ctx context.Context, id string, userID int64) error {
	log := logger.FromContext(ctx)

	result, execErr := t.DB.ExecContext(ctx, deleteTask, id, userID)
	if execErr != nil {
		log.Err(execErr).
			Str("func", "taskRepository.DeleteTask").
			Str("id", id).
			Msg("failed to execute delete query")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, execErr)
	}

	affected, raErr := result.RowsAffected()
	if raErr != nil {
		log.Err(raErr).
			Str("func", "taskRepository.DeleteTask").
			Str("id", id).
			Msg("failed to read affected rows")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, raErr)
	}

	if affected == 0 {
		log.Warn().
			Str("func", "taskRepository.DeleteTask").
			Str("id", id).
			Int64("user_id", userID).
			Msg("task not found")
		return ErrTaskNotFound
	}

	return nil
}
