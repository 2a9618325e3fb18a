// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/utils"
	"github.com/MKhiriev/go-task-keeper/models"
)

// taskEvents streams task change notifications to the client as server-sent
// events. Each event is written as an "event:" line naming the kind, a
// "data:" line carrying JSON, and a terminating blank line. Insert and update
// events carry the full task; delete events carry only the identifier.
//
// The stream stays open until the client disconnects or the subscription
// channel is closed.
func (h *Handler) taskEvents(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error().Str("func", "*Handler.taskEvents").Msg("response writer does not support flushing")
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events, cancel := h.services.TaskService.Subscribe(userID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	log.Debug().Int64("user_id", userID).Msg("event stream opened")

	for {
		select {
		case <-r.Context().Done():
			log.Debug().Int64("user_id", userID).Msg("event stream closed by client")
			return

		case event, open := <-events:
			if !open {
				return
			}
			if err := writeTaskEvent(w, event); err != nil {
				log.Warn().Err(err).Int64("user_id", userID).Msg("failed to write event, closing stream")
				return
			}
			flusher.Flush()
		}
	}
}

// writeTaskEvent serialises one event in SSE wire format.
func writeTaskEvent(w http.ResponseWriter, event models.TaskEvent) error {
	var payload any
	switch event.Kind {
	case models.EventInsert, models.EventUpdate:
		payload = event.Task
	case models.EventDelete:
		payload = struct {
			TaskID string `json:"task_id"`
		}{TaskID: event.TaskID}
	default:
		return fmt.Errorf("unknown event kind %q", event.Kind)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind, data)
	return err
}
