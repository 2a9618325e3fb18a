// Package workers aggregates the client's background workers and runs them
// as a unit: the connectivity monitor and the periodic sync job start
// together and stop together.
package workers

import "context"

// Worker is a long-lived background job bound to a context.
//
// Run must not block the caller beyond launching the job: implementations
// spawn their goroutines internally. Stop blocks until the worker's
// goroutines have fully terminated.
type Worker interface {
	Run(ctx context.Context)
	Stop()
}
