package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"chat-relay/contract"

	"github.com/shirou/gopsutil/process"
)

// TelemetryWorker periodically logs the relay's own resource usage
// together with occupancy gauges (live sessions, rooms, history length).
// Purely observational, it never touches the fan-out path.
type TelemetryWorker struct {
	log       *slog.Logger
	registry  contract.IRegistry
	directory contract.IDirectory
	history   contract.IHistory
	interval  time.Duration
}

func NewTelemetryWorker(log *slog.Logger, registry contract.IRegistry,
	directory contract.IDirectory, history contract.IHistory, interval time.Duration) *TelemetryWorker {
	return &TelemetryWorker{
		log:       log,
		registry:  registry,
		directory: directory,
		history:   history,
		interval:  interval,
	}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping telemetry")
			return nil
		case <-ticker.C:
			cpu, err := p.CPUPercent()
			if err != nil {
				w.log.Debug("Error while reading process cpu usage", "err", err)
				continue
			}
			ram, err := p.MemoryPercent()
			if err != nil {
				w.log.Debug("Error while reading process ram usage", "err", err)
				continue
			}
			w.log.Debug("Relay stats",
				"sessions", w.registry.Count(),
				"rooms", len(w.directory.ListNames()),
				"history", w.history.Len(),
				"cpu_percent", cpu,
				"ram_percent", ram)
		}
	}
}
