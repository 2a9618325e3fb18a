package models

import "time"

// MutationKind enumerates the operations that can wait in the pending queue.
type MutationKind string

const (
	MutationCreate MutationKind = "create"
	MutationUpdate MutationKind = "update"
	MutationDelete MutationKind = "delete"
)

// Mutation is one entry of the pending-mutation queue: a write that could not
// be committed to the server while offline. Entries form an ordered sequence
// (enqueue order) and are replayed in that order on reconnect.
type Mutation struct {
	// Seq is the storage-assigned position in the queue. Zero until the
	// mutation has been persisted.
	Seq int64 `json:"seq,omitempty"`

	// Kind selects create, update or delete.
	Kind MutationKind `json:"kind"`

	// TempID is the temporary task identifier a queued create refers to.
	// Empty for update/delete mutations.
	TempID string `json:"temp_id,omitempty"`

	// ID is the target task identifier for update/delete mutations.
	ID string `json:"id,omitempty"`

	// Title is the task text captured for a queued create.
	Title string `json:"title,omitempty"`

	// Payload carries the partial fields of a queued create or update.
	Payload TaskPatch `json:"payload,omitempty"`

	// EnqueuedAt records when the mutation entered the queue.
	EnqueuedAt time.Time `json:"enqueued_at"`
}
