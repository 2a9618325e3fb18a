// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-task-keeper/models"
)

const (
	createUser = `INSERT INTO users (login, password_hash)
    VALUES ($1, $2)
    RETURNING user_id, login, password_hash, created_at;`

	findUserByLogin = `SELECT user_id, login, password_hash, created_at
    FROM users
    WHERE login = $1;`

	getAllTasks = `SELECT id, user_id, title, completed, created_at, updated_at
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at DESC;`

	getSingleTask = `SELECT id, user_id, title, completed, created_at, updated_at
		FROM tasks
		WHERE id = $1 AND user_id = $2;`

	createTask = `INSERT INTO tasks (id, user_id, title, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, user_id, title, completed, created_at, updated_at;`

	deleteTask = `DELETE FROM tasks
		WHERE id = $1 AND user_id = $2;`
)

// buildTaskUpdateQuery dynamically builds a partial UPDATE for the tasks
// table. Only the fields present in the patch end up in the SET clause;
// updated_at is always stamped server-side.
func buildTaskUpdateQuery(id string, userID int64, patch models.TaskPatch) (string, []any, error) {
	builder := sq.Update("tasks").
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "user_id": userID}).
		Suffix("RETURNING id, user_id, title, completed, created_at, updated_at").
		PlaceholderFormat(sq.Dollar)

	if patch.Title != nil {
		builder = builder.Set("title", *patch.Title)
	}
	if patch.Completed != nil {
		builder = builder.Set("completed", *patch.Completed)
	}

	return builder.ToSql()
}
