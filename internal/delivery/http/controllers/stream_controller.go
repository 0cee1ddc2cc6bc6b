package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"liveask/internal/broadcast"
	"liveask/internal/delivery/http/helpers"
	"liveask/internal/domain"
)

const keepaliveInterval = 15 * time.Second

type StreamController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewStreamController(logger *slog.Logger, svc domain.EventService) *StreamController {
	return &StreamController{
		Logger:  logger,
		Service: svc,
	}
}

// Stream godoc
// @Summary Subscribe to event changes
// @Description Server-sent event stream. Delivers a full snapshot first, then incremental change records in sequence order. A resync event tells the client to reconnect for a fresh snapshot.
// @Tags events
// @Produce text/event-stream
// @Param eventID path string true "Event ID"
// @Success 200 {string} string "SSE stream: snapshot, then change events"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/event/{eventID}/stream [get]
func (c *StreamController) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "streaming unsupported")
		return
	}

	eventID := r.PathValue("eventID")
	session := broadcast.NewSession()
	session.BeginSync()

	// Subscribe takes the snapshot and enrolls the change channel under the
	// same lock, so nothing published after the snapshot can be missed.
	snap, ch, cancel, err := c.Service.Subscribe(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "subscribe failed", "event_id", eventID, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := writeSSE(w, "snapshot", snap.Seq, snap); err != nil {
		return
	}
	flusher.Flush()
	session.SnapshotDelivered(snap)

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			session.Disconnect()
			return
		case <-keepalive.C:
			// Comment line keeps proxies from closing an idle stream.
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				session.Disconnect()
				return
			}
			flusher.Flush()
		case rec, open := <-ch:
			if !open {
				// Dropped by the hub for falling behind. Tell the client to
				// reconnect for a fresh snapshot.
				c.writeResync(w, flusher, eventID, "subscriber lagged")
				session.Disconnect()
				return
			}
			ok, err := session.Apply(rec)
			if err != nil {
				c.writeResync(w, flusher, eventID, err.Error())
				return
			}
			if !ok {
				continue
			}
			if err := writeSSE(w, "change", rec.Seq, rec); err != nil {
				session.Disconnect()
				return
			}
			flusher.Flush()
		}
	}
}

func (c *StreamController) writeResync(w http.ResponseWriter, flusher http.Flusher, eventID, reason string) {
	c.Logger.Warn("stream resync", "event_id", eventID, "reason", reason)
	if _, err := fmt.Fprint(w, "event: resync\ndata: {}\n\n"); err != nil {
		return
	}
	flusher.Flush()
}

// writeSSE writes one event frame. The id field carries the change sequence
// number so clients can detect ordering issues on their side too.
func writeSSE(w http.ResponseWriter, event string, id uint64, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\nid: %d\ndata: %s\n\n", event, id, payload)
	return err
}
