package workers

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"

	"fractal-bot/contract"
)

const heartbeatInterval = 5 * time.Second

var _ contract.Worker = (*HeartbeatWorker)(nil)

// HeartbeatWorker logs process health on a fixed beat so an operator
// tailing the logs can spot runaway memory or CPU without attaching a
// profiler.
type HeartbeatWorker struct {
	log *slog.Logger
}

func NewHeartbeatWorker(log *slog.Logger) *HeartbeatWorker {
	return &HeartbeatWorker{log: log}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker")
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, status, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			w.log.Info("Heartbeat",
				"cpu_percent", cpu,
				"rss_mb", rss/(1<<20),
				"status", status,
				"goroutines", runtime.NumGoroutine())
		}
	}
}

// selfStats retrieves technical metrics (Memory, CPU, and OS Status) for the given process.
func selfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}

	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
