package observability

import (
	"testing"

	"github.com/stretchr/testify/require"

	"fractal-bot/domain/event"
)

func TestStatsCollector_SnapshotMergesCountersAndProcessStats(t *testing.T) {
	req := require.New(t)
	counter := event.NewCounter()
	counter.Increment(event.CommandHandledType)
	counter.Increment(event.CommandHandledType)
	counter.Increment(event.CensorshipHitType)

	active := 3
	stats := NewStatsCollector(counter, func() int { return active })

	snap := stats.Snapshot()
	req.Equal(uint64(2), snap["command_handled"])
	req.Equal(uint64(1), snap["censorship_hit"])
	req.Equal(3, snap["active_sessions"])
	req.Contains(snap, "uptime")
	req.Contains(snap, "goroutines")
	req.Contains(snap, "alloc_mem_mb")

	// The peak survives a drop in active sessions.
	active = 1
	snap = stats.Snapshot()
	req.Equal(1, snap["active_sessions"])
	req.Equal(int64(3), snap["peak_sessions"])
}
