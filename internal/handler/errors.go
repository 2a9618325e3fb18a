// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package handler

import "errors"

// errNoHandlersAreCreated is returned by NewHandlers when neither an HTTP
// nor a gRPC address is configured, so no transport handler can be built.
// The caller treats this as a fatal misconfiguration at startup.
var errNoHandlersAreCreated = errors.New("no handlers are created")
