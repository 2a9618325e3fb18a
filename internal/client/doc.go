// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the headless client application runtime.
//
// It wires the offline-first task engine, the connectivity monitor, the
// periodic reconcile job, and the server event stream into a single process
// lifecycle: restore (or create) a session, load the task set, start the
// background workers, and fold pushed server events into local state until
// the context is cancelled.
package client
