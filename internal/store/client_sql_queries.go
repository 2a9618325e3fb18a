// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

const (
	clientSchema = `
		CREATE TABLE IF NOT EXISTS tasks (
			id         TEXT    NOT NULL,
			user_id    INTEGER NOT NULL,
			title      TEXT    NOT NULL,
			completed  INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (id, user_id)
		);

		CREATE TABLE IF NOT EXISTS pending_mutations (
			seq         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id     INTEGER NOT NULL,
			kind        TEXT    NOT NULL,
			temp_id     TEXT    NOT NULL DEFAULT '',
			task_id     TEXT    NOT NULL DEFAULT '',
			title       TEXT    NOT NULL DEFAULT '',
			payload     TEXT    NOT NULL DEFAULT '{}',
			enqueued_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS session (
			singleton INTEGER PRIMARY KEY CHECK (singleton = 1),
			user_id   INTEGER NOT NULL,
			login     TEXT    NOT NULL,
			token     TEXT    NOT NULL,
			saved_at  TIMESTAMP NOT NULL
		);`

	deleteSnapshot = `DELETE FROM tasks WHERE user_id = $1;`

	insertSnapshotTask = `
		INSERT INTO tasks (id, user_id, title, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6);`

	selectSnapshot = `
		SELECT id, user_id, title, completed, created_at, updated_at
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at DESC;`

	insertMutation = `
		INSERT INTO pending_mutations (user_id, kind, temp_id, task_id, title, payload, enqueued_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);`

	selectMutations = `
		SELECT seq, kind, temp_id, task_id, title, payload, enqueued_at
		FROM pending_mutations
		WHERE user_id = $1
		ORDER BY seq ASC;`

	clearMutations = `DELETE FROM pending_mutations WHERE user_id = $1;`

	deleteMutation = `DELETE FROM pending_mutations WHERE user_id = $1 AND seq = $2;`

	selectQueuedCreate = `
		SELECT seq, title, payload
		FROM pending_mutations
		WHERE user_id = $1 AND kind = 'create' AND temp_id = $2;`

	amendQueuedCreate = `
		UPDATE pending_mutations
		SET title = $1, payload = $2
		WHERE seq = $3;`

	dropQueuedCreate = `
		DELETE FROM pending_mutations
		WHERE user_id = $1 AND temp_id = $2;`

	upsertSession = `
		INSERT INTO session (singleton, user_id, login, token, saved_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (singleton) DO UPDATE SET
			user_id  = excluded.user_id,
			login    = excluded.login,
			token    = excluded.token,
			saved_at = excluded.saved_at;`

	selectSession = `SELECT user_id, login, token, saved_at FROM session WHERE singleton = 1;`

	deleteSession = `DELETE FROM session WHERE singleton = 1;`
)
