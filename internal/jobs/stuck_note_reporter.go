package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"canvaspilot/internal/canvus"
	"canvaspilot/internal/config"
	"canvaspilot/internal/instruction"
	"canvaspilot/internal/metrics"

	"github.com/robfig/cron/v3"
)

// StuckNoteReporter periodically counts notes that still carry the
// processing marker. A note gets stuck when an instruction fails mid-flight;
// the poller deliberately never rewrites it, so this job gives operators the
// visibility to fix it by hand. Strictly read-only.
type StuckNoteReporter struct {
	client   *canvus.Client
	targets  *config.Targets
	schedule cron.Schedule
	metrics  *metrics.Metrics
}

// NewStuckNoteReporter creates the reporter from a standard 5-field cron
// expression.
func NewStuckNoteReporter(client *canvus.Client, targets *config.Targets, cronExpr string, m *metrics.Metrics) (*StuckNoteReporter, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid stuck-note report schedule %q: %w", cronExpr, err)
	}

	return &StuckNoteReporter{
		client:   client,
		targets:  targets,
		schedule: schedule,
		metrics:  m,
	}, nil
}

// Run counts stuck notes across all target canvases.
func (j *StuckNoteReporter) Run(ctx context.Context) error {
	total := 0

	for _, name := range j.targets.Get() {
		canvas, err := j.client.GetCanvasByName(ctx, name)
		if err != nil {
			return err
		}

		notes, err := j.client.ListNotes(ctx, canvas.ID)
		if err != nil {
			return err
		}

		for _, note := range notes {
			if instruction.IsStuck(note.Text) {
				total++
				slog.Warn("note stuck in processing state",
					"canvas", name,
					"note_id", note.ID,
					"title", note.Title,
				)
			}
		}
	}

	j.metrics.RecordStuckNotes(total)
	if total > 0 {
		slog.Warn("stuck notes need manual intervention", "count", total)
	} else {
		slog.Debug("no stuck notes found")
	}
	return nil
}

// NextRun returns the next report time from the cron schedule.
func (j *StuckNoteReporter) NextRun() time.Time {
	return j.schedule.Next(time.Now())
}
