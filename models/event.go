package models

// EventKind enumerates the change notifications pushed by the server to
// subscribed clients.
type EventKind string

const (
	EventInsert EventKind = "insert"
	EventUpdate EventKind = "update"
	EventDelete EventKind = "delete"
)

// TaskEvent is a single change notification scoped to one user. Insert and
// update events carry the full task; delete events carry only the identifier.
type TaskEvent struct {
	Kind EventKind `json:"kind"`

	// Task is populated for insert and update events.
	Task Task `json:"task,omitempty"`

	// TaskID identifies the removed task for delete events.
	TaskID string `json:"task_id,omitempty"`
}
