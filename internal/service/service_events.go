package service

import (
	"sync"

	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/models"
)

// subscriberBuffer is the channel capacity of one subscriber. A subscriber
// that falls this far behind starts losing events; the periodic reconcile
// refetch picks up whatever was dropped.
const subscriberBuffer = 16

// eventHub fans task change events out to per-user subscriber channels.
// Broadcast never blocks on a slow consumer.
type eventHub struct {
	mu          sync.RWMutex
	subscribers map[int64]map[int]chan models.TaskEvent
	nextID      int

	logger *logger.Logger
}

func newEventHub(logger *logger.Logger) *eventHub {
	return &eventHub{
		subscribers: make(map[int64]map[int]chan models.TaskEvent),
		logger:      logger,
	}
}

// Subscribe registers a new channel for userID and returns it together with a
// cancel function. The cancel function is idempotent.
func (h *eventHub) Subscribe(userID int64) (<-chan models.TaskEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[int]chan models.TaskEvent)
	}

	id := h.nextID
	h.nextID++

	events := make(chan models.TaskEvent, subscriberBuffer)
	h.subscribers[userID][id] = events

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			if subs, ok := h.subscribers[userID]; ok {
				delete(subs, id)
				if len(subs) == 0 {
					delete(h.subscribers, userID)
				}
			}
			close(events)
		})
	}

	return events, cancel
}

// Broadcast delivers event to every subscriber of userID. A full subscriber
// channel drops the event instead of blocking the caller.
func (h *eventHub) Broadcast(userID int64, event models.TaskEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, events := range h.subscribers[userID] {
		select {
		case events <- event:
		default:
			h.logger.Warn().
				Int64("user_id", userID).
				Int("subscriber", id).
				Str("kind", string(event.Kind)).
				Msg("slow subscriber, dropping event")
		}
	}
}
