// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for communicating with
// the go-task-keeper server.
//
// The primary abstraction is [ServerAdapter], which decouples the sync engine
// from the underlying protocol. The package currently ships an HTTP/REST
// implementation ([NewHTTPServerAdapter]); a gRPC implementation is reserved
// for future use.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrConflict] for 409, [ErrUnauthorized] for 401). Network
// failures — the server being unreachable at all — are mapped to [ErrOffline],
// which is the signal the sync engine uses to fall back to its offline path.
package adapter

import (
	"context"

	"github.com/MKhiriev/go-task-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// ServerAdapter defines transport-agnostic communication with the
// go-task-keeper server. Implementations are responsible for serialisation,
// authentication header management, and mapping transport-level errors to the
// sentinel values defined in this package.
type ServerAdapter interface {
	// SetToken stores the bearer token that will be attached to all subsequent
	// authenticated requests. It should be called immediately after a
	// successful Register or Login.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or an
	// empty string if no token has been set yet.
	Token() string

	// Register sends a registration request to the server with the provided
	// user credentials. On success it stores the returned bearer token via
	// SetToken and returns a token value carrying the assigned user id.
	Register(ctx context.Context, user models.User) (models.Token, error)

	// Login authenticates the user with the server. On success it stores the
	// returned bearer token via SetToken and returns a token value carrying
	// the user id.
	Login(ctx context.Context, user models.User) (models.Token, error)

	// FetchAll retrieves the complete task list of the authenticated user,
	// newest first. Returns [ErrOffline] (wrapped) when the server cannot be
	// reached.
	FetchAll(ctx context.Context) ([]models.Task, error)

	// CreateTask sends a new task to the server and returns the persisted
	// task with its server-assigned identifier and timestamps.
	CreateTask(ctx context.Context, draft models.TaskDraft) (models.Task, error)

	// UpdateTask applies a partial update to the task identified by id and
	// returns the updated task. Returns [ErrNotFound] (wrapped) when the
	// task does not exist on the server.
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error)

	// DeleteTask removes the task identified by id. Returns [ErrNotFound]
	// (wrapped) when the task does not exist on the server.
	DeleteTask(ctx context.Context, id string) error

	// Subscribe opens a server-sent-events stream of task change
	// notifications for the authenticated user. Events arrive on the
	// returned channel until ctx is cancelled or the stream breaks, at
	// which point the channel is closed.
	Subscribe(ctx context.Context) (<-chan models.TaskEvent, error)

	// Health probes the server health endpoint. A nil return means the
	// server is reachable and serving.
	Health(ctx context.Context) error
}
