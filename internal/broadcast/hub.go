// Package broadcast fans change records out to the push sessions watching an
// event, and tracks per-connection session state.
package broadcast

import (
	"log/slog"
	"sync"

	"liveask/internal/domain"
)

// DefaultBacklog is the per-subscriber channel buffer. A subscriber that
// falls this far behind is dropped rather than allowed to block delivery.
const DefaultBacklog = 64

type subscriber struct {
	eventID string
	ch      chan domain.ChangeRecord
	closed  sync.Once
}

func (s *subscriber) close() {
	s.closed.Do(func() { close(s.ch) })
}

// Hub implements domain.Broadcaster with per-event subscriber sets.
type Hub struct {
	mu      sync.RWMutex
	subs    map[string]map[*subscriber]struct{}
	backlog int
	logger  *slog.Logger
}

// NewHub returns a Hub with the given per-subscriber backlog bound.
func NewHub(backlog int, logger *slog.Logger) *Hub {
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	return &Hub{
		subs:    make(map[string]map[*subscriber]struct{}),
		backlog: backlog,
		logger:  logger,
	}
}

// Enroll registers a subscriber for the event and returns its delivery
// channel plus a cancel function. The channel is closed either by cancel or
// by the hub when the subscriber's backlog fills; a closed channel tells the
// session its stream ended and a resync is needed.
func (h *Hub) Enroll(eventID string) (<-chan domain.ChangeRecord, func()) {
	sub := &subscriber{
		eventID: eventID,
		ch:      make(chan domain.ChangeRecord, h.backlog),
	}
	h.mu.Lock()
	set, ok := h.subs[eventID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[eventID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	return sub.ch, func() { h.remove(sub) }
}

// Publish delivers the record to every current subscriber of the event.
// It never blocks: a subscriber whose buffer is full is dropped, so one slow
// consumer cannot delay the rest or the store holding the event lock.
func (h *Hub) Publish(rec domain.ChangeRecord) {
	var stale []*subscriber

	h.mu.RLock()
	for sub := range h.subs[rec.EventID] {
		select {
		case sub.ch <- rec:
		default:
			stale = append(stale, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range stale {
		h.logger.Warn("dropping slow subscriber", "event_id", sub.eventID, "backlog", h.backlog)
		h.remove(sub)
	}
}

// Subscribers returns the number of active subscribers for the event.
func (h *Hub) Subscribers(eventID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[eventID])
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	if set, ok := h.subs[sub.eventID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.eventID)
		}
	}
	h.mu.Unlock()
	sub.close()
}
