// Package observability aggregates runtime health for the ops console.
package observability

import (
	"os"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"

	"fractal-bot/domain/event"
)

// StatsCollector merges the telemetry tallies with process-level numbers.
// Snapshots are computed on demand, one per console request.
type StatsCollector struct {
	started  time.Time
	counter  *event.Counter
	sessions func() int
	proc     *process.Process // nil when the pid lookup failed

	// Observed peaks, updated on every snapshot.
	peakSessions atomic.Int64
}

func NewStatsCollector(counter *event.Counter, sessions func() int) *StatsCollector {
	proc, _ := process.NewProcess(int32(os.Getpid()))
	return &StatsCollector{
		started:  time.Now(),
		counter:  counter,
		sessions: sessions,
		proc:     proc,
	}
}

// Snapshot renders the current numbers for the console dashboard.
func (s *StatsCollector) Snapshot() map[string]any {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	active := s.sessions()
	if peak := s.peakSessions.Load(); int64(active) > peak {
		s.peakSessions.CompareAndSwap(peak, int64(active))
	}

	out := map[string]any{
		"uptime":          time.Since(s.started).Round(time.Second).String(),
		"goroutines":      runtime.NumGoroutine(),
		"alloc_mem_mb":    m.Alloc / 1024 / 1024,
		"num_gc":          m.NumGC,
		"active_sessions": active,
		"peak_sessions":   s.peakSessions.Load(),
	}
	if s.proc != nil {
		if cpu, err := s.proc.CPUPercent(); err == nil {
			out["cpu_percent"] = float64(int(cpu*10)) / 10
		}
		if ram, err := s.proc.MemoryPercent(); err == nil {
			out["ram_percent"] = float64(int(ram*10)) / 10
		}
	}
	for t, n := range s.counter.Snapshot() {
		out[strings.ToLower(string(t))] = n
	}
	return out
}
