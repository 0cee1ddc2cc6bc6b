package broadcast

import (
	"testing"

	"liveask/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Lifecycle(t *testing.T) {
	s := NewSession()
	assert.Equal(t, StateConnecting, s.State())

	s.BeginSync()
	assert.Equal(t, StateSyncing, s.State())

	s.SnapshotDelivered(&domain.Snapshot{Event: &domain.EventView{ID: "ev-1"}, Seq: 5})
	assert.Equal(t, StateLive, s.State())
	assert.Equal(t, uint64(5), s.LastSeq())

	s.Disconnect()
	assert.Equal(t, StateDisconnected, s.State())

	_, err := s.Apply(record("ev-1", 6))
	require.Error(t, err, "a disconnected session accepts no records")
}

func TestSession_AppliesInOrder(t *testing.T) {
	s := NewSession()
	s.BeginSync()
	s.SnapshotDelivered(&domain.Snapshot{Event: &domain.EventView{ID: "ev-1"}, Seq: 5})

	ok, err := s.Apply(record("ev-1", 6))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(6), s.LastSeq())
}

func TestSession_SkipsDuplicates(t *testing.T) {
	s := NewSession()
	s.BeginSync()
	s.SnapshotDelivered(&domain.Snapshot{Event: &domain.EventView{ID: "ev-1"}, Seq: 5})

	// Records at or below the snapshot seq are already reflected in it.
	for _, seq := range []uint64{3, 5} {
		ok, err := s.Apply(record("ev-1", seq))
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, uint64(5), s.LastSeq())
	assert.Equal(t, StateLive, s.State())
}

func TestSession_GapTriggersResync(t *testing.T) {
	s := NewSession()
	s.BeginSync()
	s.SnapshotDelivered(&domain.Snapshot{Event: &domain.EventView{ID: "ev-1"}, Seq: 5})

	// Snapshot at seq 5, then seq 7 arrives: must resync, never apply.
	ok, err := s.Apply(record("ev-1", 7))
	assert.False(t, ok)
	require.ErrorIs(t, err, ErrSeqGap)
	assert.Equal(t, StateDisconnected, s.State())
	assert.Equal(t, uint64(5), s.LastSeq(), "out-of-order record must not advance the session")
}

func TestSession_ApplyBeforeSnapshotFails(t *testing.T) {
	s := NewSession()
	_, err := s.Apply(record("ev-1", 1))
	require.Error(t, err)

	s.BeginSync()
	_, err = s.Apply(record("ev-1", 1))
	require.Error(t, err)
}
