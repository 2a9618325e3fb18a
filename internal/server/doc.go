// Package server wires and runs the task-keeper transport servers.
//
// It orchestrates the HTTP (and reserved gRPC) server lifecycles: startup,
// OS signal handling, and graceful shutdown of all enabled transports.
// Shutdown also terminates any open event streams held by subscribers.
package server
