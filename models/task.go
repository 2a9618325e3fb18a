package models

import (
	"strings"
	"time"
)

// TempIDPrefix marks a locally generated task identifier that has not yet been
// confirmed by the server. A task carrying such an identifier exists only on
// the client until its queued create is replayed.
const TempIDPrefix = "temp-"

// Task is a single to-do item owned by one user.
//
// ID is either a stable server-issued UUID or a temporary client-side
// identifier (see [TempIDPrefix]). Exactly one task per ID may exist in the
// client's in-memory set and in the local mirror at any time.
type Task struct {
	// ID is the unique task identifier.
	ID string `json:"id"`

	// UserID is the owner of the task.
	UserID int64 `json:"user_id"`

	// Title is the non-empty task text.
	Title string `json:"title"`

	// Completed reports whether the task has been marked done.
	Completed bool `json:"completed"`

	// CreatedAt is assigned by the server on create (or locally for a
	// temporary task, replaced on promotion).
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is stamped on every mutation.
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTemp reports whether the task identifier is a not-yet-confirmed local one.
func (t Task) IsTemp() bool {
	return IsTempID(t.ID)
}

// TableName returns the name of the database table associated with the Task model.
func (t Task) TableName() string {
	return "tasks"
}

// IsTempID reports whether id carries the temporary client-side prefix.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// TaskDraft is the payload of a task create request. The server assigns the
// identifier and both timestamps.
type TaskDraft struct {
	// UserID is the owner of the new task. Filled by the server from the
	// authenticated session; clients may leave it zero.
	UserID int64 `json:"user_id,omitempty"`

	// Title is the task text. Must be non-empty after trimming.
	Title string `json:"title"`

	// Completed is the initial completion flag, normally false.
	Completed bool `json:"completed"`
}

// TaskPatch is a partial task update. Only non-nil fields are applied.
type TaskPatch struct {
	// Title replaces the task text when non-nil.
	Title *string `json:"title,omitempty"`

	// Completed replaces the completion flag when non-nil.
	Completed *bool `json:"completed,omitempty"`

	// UpdatedAt carries the client-side mutation timestamp for offline
	// edits; the server stamps its own value when nil.
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Completed == nil
}

// ApplyTo merges the patch into task and returns the result.
func (p TaskPatch) ApplyTo(task Task) Task {
	if p.Title != nil {
		task.Title = *p.Title
	}
	if p.Completed != nil {
		task.Completed = *p.Completed
	}
	if p.UpdatedAt != nil {
		task.UpdatedAt = *p.UpdatedAt
	}
	return task
}

// Merge overlays other on top of the receiver: fields set in other win.
func (p TaskPatch) Merge(other TaskPatch) TaskPatch {
	out := p
	if other.Title != nil {
		out.Title = other.Title
	}
	if other.Completed != nil {
		out.Completed = other.Completed
	}
	if other.UpdatedAt != nil {
		out.UpdatedAt = other.UpdatedAt
	}
	return out
}
