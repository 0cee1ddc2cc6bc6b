package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"liveask/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func changeRecord(seq uint64) domain.ChangeRecord {
	return domain.ChangeRecord{
		EventID: "ev-1",
		Seq:     seq,
		Kind:    domain.ChangeLikeToggled,
		LikeToggled: &domain.LikeToggledPayload{
			QuestionID: "q-1",
			Count:      int(seq),
		},
	}
}

// sseEvents splits a raw SSE body into frames and returns the event names in order.
func sseEvents(t *testing.T, body string) []string {
	t.Helper()
	var names []string
	for _, frame := range strings.Split(body, "\n\n") {
		for _, line := range strings.Split(frame, "\n") {
			if name, ok := strings.CutPrefix(line, "event: "); ok {
				names = append(names, name)
			}
		}
	}
	return names
}

func TestStreamController_SnapshotThenChanges(t *testing.T) {
	ch := make(chan domain.ChangeRecord, 4)
	ch <- changeRecord(3)
	ch <- changeRecord(4)
	close(ch)

	fake := &fakeEventService{
		subscribeSnap: &domain.Snapshot{Event: &domain.EventView{ID: "ev-1"}, Seq: 2},
		subscribeCh:   ch,
	}
	ctrl := NewStreamController(testLogger, fake)
	req := httptest.NewRequest(http.MethodGet, "http://test/api/event/ev-1/stream", nil)
	req.SetPathValue("eventID", "ev-1")
	rr := httptest.NewRecorder()
	ctrl.Stream(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))
	assert.True(t, fake.subscribeCancelCalled, "stream must release its subscription")

	body := rr.Body.String()
	// Snapshot first, both changes in sequence order, then the resync hint
	// for the closed channel.
	assert.Equal(t, []string{"snapshot", "change", "change", "resync"}, sseEvents(t, body))
	assert.Contains(t, body, "id: 2")
	snapIdx := strings.Index(body, "event: snapshot")
	first := strings.Index(body, `"seq":3`)
	second := strings.Index(body, `"seq":4`)
	require.Greater(t, first, snapIdx)
	require.Greater(t, second, first)
}

func TestStreamController_SkipsDuplicates(t *testing.T) {
	ch := make(chan domain.ChangeRecord, 4)
	ch <- changeRecord(2) // already covered by the snapshot
	ch <- changeRecord(3)
	close(ch)

	fake := &fakeEventService{
		subscribeSnap: &domain.Snapshot{Event: &domain.EventView{ID: "ev-1"}, Seq: 2},
		subscribeCh:   ch,
	}
	ctrl := NewStreamController(testLogger, fake)
	req := httptest.NewRequest(http.MethodGet, "http://test/api/event/ev-1/stream", nil)
	req.SetPathValue("eventID", "ev-1")
	rr := httptest.NewRecorder()
	ctrl.Stream(rr, req)

	body := rr.Body.String()
	assert.Equal(t, []string{"snapshot", "change", "resync"}, sseEvents(t, body))
	assert.NotContains(t, body, `"count":2`, "duplicate record must not be delivered")
	assert.Contains(t, body, `"seq":3`)
}

func TestStreamController_GapTriggersResync(t *testing.T) {
	ch := make(chan domain.ChangeRecord, 2)
	ch <- changeRecord(5) // snapshot is at 2; 3 and 4 are missing

	fake := &fakeEventService{
		subscribeSnap: &domain.Snapshot{Event: &domain.EventView{ID: "ev-1"}, Seq: 2},
		subscribeCh:   ch,
	}
	ctrl := NewStreamController(testLogger, fake)
	req := httptest.NewRequest(http.MethodGet, "http://test/api/event/ev-1/stream", nil)
	req.SetPathValue("eventID", "ev-1")
	rr := httptest.NewRecorder()
	ctrl.Stream(rr, req)

	body := rr.Body.String()
	assert.Equal(t, []string{"snapshot", "resync"}, sseEvents(t, body))
	assert.NotContains(t, body, `"seq":5`, "out-of-order record must not be delivered")
}

func TestStreamController_ClientDisconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := &fakeEventService{
		subscribeSnap: &domain.Snapshot{Event: &domain.EventView{ID: "ev-1"}, Seq: 0},
		subscribeCh:   make(chan domain.ChangeRecord),
	}
	ctrl := NewStreamController(testLogger, fake)
	req := httptest.NewRequest(http.MethodGet, "http://test/api/event/ev-1/stream", nil).WithContext(ctx)
	req.SetPathValue("eventID", "ev-1")
	rr := httptest.NewRecorder()
	ctrl.Stream(rr, req)

	assert.True(t, fake.subscribeCancelCalled)
	assert.Equal(t, []string{"snapshot"}, sseEvents(t, rr.Body.String()))
}

func TestStreamController_UnknownEvent(t *testing.T) {
	fake := &fakeEventService{subscribeErr: domain.ErrNotFound}
	ctrl := NewStreamController(testLogger, fake)
	req := httptest.NewRequest(http.MethodGet, "http://test/api/event/missing/stream", nil)
	req.SetPathValue("eventID", "missing")
	rr := httptest.NewRecorder()
	ctrl.Stream(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}
