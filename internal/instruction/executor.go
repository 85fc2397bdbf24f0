package instruction

import (
	"context"
	"fmt"
	"log/slog"

	"canvaspilot/internal/canvus"
	"canvaspilot/internal/genai"
	"canvaspilot/internal/metrics"
	"canvaspilot/internal/models"

	"github.com/google/uuid"
)

const (
	responseNoteTitle  = "AI Response"
	responseImageTitle = "AI Generated Image"

	// The response artifact cascades down-right from its source note by this
	// fraction of the note's size, and renders one depth level above it.
	placementOffset = 0.8
)

// Executor carries one instruction through the generative service and writes
// the result back to the canvas. Any failure leaves the source note in the
// processing state; there is no rollback.
type Executor struct {
	canvus  *canvus.Client
	genai   *genai.Client
	metrics *metrics.Metrics
}

// NewExecutor creates an executor over the two service clients.
func NewExecutor(canvusClient *canvus.Client, genaiClient *genai.Client, m *metrics.Metrics) *Executor {
	return &Executor{
		canvus:  canvusClient,
		genai:   genaiClient,
		metrics: m,
	}
}

// Execute runs the full instruction pipeline: completion, strict artifact
// parse, placement from the source note's current geometry, artifact
// creation, and finally the done-marker commit on the source note.
func (e *Executor) Execute(ctx context.Context, log *slog.Logger, canvasID, noteID, instructionText string) error {
	reply, err := e.genai.Complete(ctx, instructionText)
	if err != nil {
		return err
	}
	log.Debug("generative reply received", "reply", reply)

	artifact, err := genai.ParseArtifact(reply)
	if err != nil {
		return err
	}

	// Re-fetch the note: its geometry may have moved since the scan, and the
	// done transition below must apply to the current text.
	note, err := e.canvus.GetNote(ctx, canvasID, noteID)
	if err != nil {
		return err
	}

	placement := models.Point{
		X: note.Location.X + note.Size.Width*placementOffset,
		Y: note.Location.Y + note.Size.Height*placementOffset,
	}
	depth := note.Depth + 1

	switch artifact.Type {
	case genai.ArtifactText:
		created, err := e.canvus.CreateNote(ctx, canvasID, models.NoteCreate{
			Title:           responseNoteTitle,
			Text:            artifact.Content,
			Depth:           depth,
			Location:        placement,
			Size:            note.Size,
			Scale:           note.Scale,
			BackgroundColor: RandomNoteColor(),
		})
		if err != nil {
			return err
		}
		e.metrics.RecordArtifact("text")
		log.Info("response note created", "response_note_id", created.ID)

	case genai.ArtifactImage:
		imageURL, err := e.genai.GenerateImage(ctx, artifact.Content)
		if err != nil {
			return err
		}
		log.Debug("image generated", "url", imageURL)

		imageData, err := e.genai.Download(ctx, imageURL)
		if err != nil {
			return err
		}

		filename := fmt.Sprintf("ai_image_%s.png", uuid.New().String())
		err = e.canvus.CreateImage(ctx, canvasID, models.ImageCreate{
			Title:    responseImageTitle,
			Depth:    depth,
			Location: placement,
			Size:     note.Size,
			Scale:    note.Scale,
		}, imageData, filename)
		if err != nil {
			return err
		}
		e.metrics.RecordArtifact("image")
		log.Info("response image created", "bytes", len(imageData))
	}

	return e.canvus.UpdateNoteText(ctx, canvasID, noteID, MarkDone(note.Text))
}
