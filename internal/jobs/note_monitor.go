package jobs

import (
	"context"
	"time"

	"canvaspilot/internal/instruction"
	"canvaspilot/internal/logging"
	"canvaspilot/internal/metrics"
	"canvaspilot/internal/status"

	"github.com/google/uuid"
)

// NoteMonitor is the core poll cycle: scan the target canvases for
// instruction notes and execute each one. It runs forever on a fixed delay;
// the first run fires immediately at startup.
type NoteMonitor struct {
	scanner  *instruction.Scanner
	interval time.Duration
	metrics  *metrics.Metrics
	recorder *status.Recorder
	lastRun  time.Time
}

// NewNoteMonitor creates the poll job with the given fixed delay.
func NewNoteMonitor(scanner *instruction.Scanner, interval time.Duration, m *metrics.Metrics, recorder *status.Recorder) *NoteMonitor {
	return &NoteMonitor{
		scanner:  scanner,
		interval: interval,
		metrics:  m,
		recorder: recorder,
	}
}

// Run executes one poll cycle. Errors propagate to the scheduler, which logs
// them and reschedules; a failed cycle never stops the poller.
func (j *NoteMonitor) Run(ctx context.Context) error {
	j.lastRun = time.Now()

	cycleID := uuid.New().String()[:8]
	log := logging.WithCycle(cycleID)
	log.Debug("poll cycle starting")

	start := time.Now()
	err := j.scanner.Scan(ctx, log)
	elapsed := time.Since(start)

	j.metrics.RecordCycle(elapsed.Seconds())

	if err != nil {
		kind := instruction.ErrorKind(err)
		j.metrics.RecordCycleError(kind)
		j.recorder.RecordFailure(cycleID, kind, err)
		log.Error("poll cycle failed", "kind", kind, "error", err, "elapsed", elapsed)
		return err
	}

	j.recorder.RecordSuccess()
	log.Debug("poll cycle completed", "elapsed", elapsed)
	return nil
}

// NextRun returns the next poll time: immediately on startup, then one full
// interval after the end of the previous cycle (fixed delay, not fixed rate).
func (j *NoteMonitor) NextRun() time.Time {
	if j.lastRun.IsZero() {
		return time.Now()
	}
	return time.Now().Add(j.interval)
}
