package broadcast

import (
	"errors"
	"fmt"

	"liveask/internal/domain"
)

// ErrSeqGap is returned by Apply when a change record skips ahead of the
// session's last seen sequence number. The session must resync from a fresh
// snapshot rather than apply out-of-order state.
var ErrSeqGap = errors.New("sequence gap")

// State is the lifecycle phase of one push connection.
type State string

const (
	StateConnecting   State = "connecting"
	StateSyncing      State = "syncing"
	StateLive         State = "live"
	StateDisconnected State = "disconnected"
)

// Session tracks one connection on the push channel. It holds only the last
// seen sequence number and the lifecycle state; nothing survives the
// connection, so a reconnect always starts over with a full snapshot.
//
// Sessions are confined to the goroutine serving the connection and are not
// safe for concurrent use.
type Session struct {
	state   State
	lastSeq uint64
}

// NewSession returns a session in the Connecting state.
func NewSession() *Session {
	return &Session{state: StateConnecting}
}

// State returns the current lifecycle phase.
func (s *Session) State() State { return s.state }

// LastSeq returns the last applied sequence number.
func (s *Session) LastSeq() uint64 { return s.lastSeq }

// BeginSync moves the session into the Syncing phase while the snapshot is
// being delivered.
func (s *Session) BeginSync() {
	s.state = StateSyncing
}

// SnapshotDelivered records the snapshot's sequence number and moves the
// session Live.
func (s *Session) SnapshotDelivered(snap *domain.Snapshot) {
	s.lastSeq = snap.Seq
	s.state = StateLive
}

// Apply validates a change record against the session's position. Records at
// or below the last seen seq are duplicates and skipped (ok is false). A
// record more than one ahead is a gap: the session is marked disconnected and
// ErrSeqGap is returned so the caller can trigger a resync.
func (s *Session) Apply(rec domain.ChangeRecord) (ok bool, err error) {
	if s.state != StateLive {
		return false, fmt.Errorf("apply in state %s", s.state)
	}
	if rec.Seq <= s.lastSeq {
		return false, nil
	}
	if rec.Seq != s.lastSeq+1 {
		s.state = StateDisconnected
		return false, fmt.Errorf("expected seq %d, got %d: %w", s.lastSeq+1, rec.Seq, ErrSeqGap)
	}
	s.lastSeq = rec.Seq
	return true, nil
}

// Disconnect marks the session closed. Further Apply calls fail.
func (s *Session) Disconnect() {
	s.state = StateDisconnected
}
