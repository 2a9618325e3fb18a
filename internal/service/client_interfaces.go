package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-task-keeper/models"
)

// ClientAuthService defines the client-side contract for account management
// and session persistence. Implementations talk to the server through the
// adapter and keep the session in local storage so it survives restarts.
type ClientAuthService interface {
	// Register creates a new account on the server, stores the returned
	// bearer token in the adapter and persists the session locally.
	Register(ctx context.Context, user models.User) (models.Session, error)

	// Login authenticates against the server, stores the returned bearer
	// token in the adapter and persists the session locally.
	Login(ctx context.Context, user models.User) (models.Session, error)

	// RestoreSession loads the locally persisted session, if any, and
	// re-arms the adapter with its token. Returns
	// store.ErrLocalSessionNotFound when no session is stored.
	RestoreSession(ctx context.Context) (models.Session, error)

	// Logout discards the locally persisted session and clears the
	// adapter's token.
	Logout(ctx context.Context) error
}

// TaskSyncService is the offline-first task engine: it keeps an in-memory
// task set backed by a durable local mirror, applies every local edit
// optimistically, queues writes the server cannot receive, and replays the
// queue when connectivity returns.
//
// All methods are safe for concurrent use.
type TaskSyncService interface {
	// SetUser scopes the engine to userID and resets all in-memory state.
	// Must be called after login and before any other method.
	SetUser(userID int64)

	// Load refreshes the task set from the server. When the server is
	// unreachable the durable mirror is loaded instead, so the call
	// degrades rather than fails. Calling Load twice in a row yields the
	// same result.
	Load(ctx context.Context) ([]models.Task, error)

	// Tasks returns a copy of the current in-memory task set.
	Tasks() []models.Task

	// Syncing reports whether a synchronisation pass is currently running.
	Syncing() bool

	// Add creates a task with the given title. Online, the task comes back
	// with its server identifier; offline, it appears immediately under a
	// temporary identifier and a create is queued.
	Add(ctx context.Context, title string) (models.Task, error)

	// Update applies the patch to the task with the given id. Offline
	// updates to a still-temporary task are folded into its queued create.
	Update(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error)

	// Delete removes the task with the given id. Deleting a
	// still-temporary task voids its queued create without ever touching
	// the server.
	Delete(ctx context.Context, id string) error

	// ToggleComplete sets the completion flag of the task with the given id
	// to the explicit target state.
	ToggleComplete(ctx context.Context, id string, completed bool) (models.Task, error)

	// DrainQueue replays every pending mutation against the server in
	// enqueue order, clears the queue, and reconciles by refetching.
	// Concurrent calls coalesce: a drain requested while one is running
	// triggers exactly one follow-up pass.
	DrainQueue(ctx context.Context) error

	// ApplyRemoteEvent folds a pushed change notification into the task set.
	ApplyRemoteEvent(ctx context.Context, event models.TaskEvent)

	// Subscribe registers an observer of the engine state. The current
	// snapshot is delivered immediately; the cancel function is idempotent.
	Subscribe() (<-chan TaskListView, func())
}

// ConnectivityMonitor watches reachability of the server and reports
// transitions. Consumers register a callback that fires on each
// offline-to-online edge; steady states produce no calls.
type ConnectivityMonitor interface {
	// Start begins probing. If the server is reachable at start the
	// online callback fires once immediately. Any previously running
	// monitor is stopped first.
	Start(ctx context.Context)

	// Stop terminates probing and blocks until the probe goroutine exits.
	Stop()

	// Online reports the last observed reachability state.
	Online() bool

	// OnOnline registers the callback invoked on each offline-to-online
	// transition. Must be called before Start.
	OnOnline(fn func())
}

// ClientSyncJob is a background worker that periodically reconciles the
// local task set with the server.
type ClientSyncJob interface {
	// Start launches the background goroutine. It reconciles every
	// interval, defaulting to 5 minutes if interval is zero or negative.
	// Any previously running job is stopped before the new one begins.
	Start(ctx context.Context, interval time.Duration)

	// Stop signals the background goroutine to exit and blocks until it
	// has fully terminated.
	Stop()
}
