package observability

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStats_SnapshotReflectsGaugesAndCounters(t *testing.T) {
	req := require.New(t)
	stats := NewStats()

	// Given some processed activity
	stats.SetGauges(3, 2, 1)
	stats.IncrCommands()
	stats.IncrCommands()
	stats.AddDelivered(5)

	// Then the snapshot carries the latest values
	snapshot := stats.Snapshot()
	req.Equal(int64(3), snapshot.ActiveSessionCount)
	req.Equal(int64(2), snapshot.ActiveIdentityCount)
	req.Equal(int64(1), snapshot.RoomCount)
	req.Equal(uint64(2), snapshot.CommandsProcessed)
	req.Equal(uint64(5), snapshot.EventsDelivered)
}

func TestStats_GaugesAreOverwrittenNotAccumulated(t *testing.T) {
	req := require.New(t)
	stats := NewStats()

	stats.SetGauges(10, 10, 10)
	stats.SetGauges(1, 0, 0)

	snapshot := stats.Snapshot()
	req.Equal(int64(1), snapshot.ActiveSessionCount)
	req.Equal(int64(0), snapshot.ActiveIdentityCount)
	req.Equal(int64(0), snapshot.RoomCount)
}
