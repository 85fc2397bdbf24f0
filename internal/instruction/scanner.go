package instruction

import (
	"context"
	"log/slog"

	"canvaspilot/internal/canvus"
	"canvaspilot/internal/config"
	"canvaspilot/internal/logging"
	"canvaspilot/internal/metrics"
)

// Scanner finds unprocessed instruction notes on the target canvases and
// hands each one to the executor. Execution is synchronous and in scan
// order: a matched note is marked processing, executed, and only then does
// scanning continue. A failure anywhere aborts the whole cycle.
type Scanner struct {
	client   *canvus.Client
	executor *Executor
	targets  *config.Targets
	metrics  *metrics.Metrics
}

// NewScanner creates a scanner over the given targets.
func NewScanner(client *canvus.Client, executor *Executor, targets *config.Targets, m *metrics.Metrics) *Scanner {
	return &Scanner{
		client:   client,
		executor: executor,
		targets:  targets,
		metrics:  m,
	}
}

// Scan runs one full poll cycle across every target canvas.
func (s *Scanner) Scan(ctx context.Context, log *slog.Logger) error {
	for _, name := range s.targets.Get() {
		if err := s.scanCanvas(ctx, log, name); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scanner) scanCanvas(ctx context.Context, log *slog.Logger, name string) error {
	canvas, err := s.client.GetCanvasByName(ctx, name)
	if err != nil {
		return err
	}
	log = log.With("canvas", name)
	log.Debug("scanning canvas", "canvas_id", canvas.ID)

	notes, err := s.client.ListNotes(ctx, canvas.ID)
	if err != nil {
		return err
	}

	for _, note := range notes {
		text, ok := Extract(note.Text)
		if !ok {
			continue
		}

		noteLog := logging.WithNote(log, canvas.ID, note.ID)
		noteLog.Info("found instruction", "instruction", text)

		// Mark processing before executing so the next cycle, which only
		// starts after this one completes, cannot re-match the note.
		if err := s.client.UpdateNoteText(ctx, canvas.ID, note.ID, MarkProcessing(note.Text)); err != nil {
			return err
		}
		noteLog.Debug("note marked as processing")

		if err := s.executor.Execute(ctx, noteLog, canvas.ID, note.ID, text); err != nil {
			return err
		}
		s.metrics.RecordInstruction()
		noteLog.Info("instruction completed")
	}

	return nil
}
