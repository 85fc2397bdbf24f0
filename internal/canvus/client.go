package canvus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"canvaspilot/internal/models"
)

// requestTimeout bounds every Canvus call so a slow server cannot stall the
// poll cadence indefinitely.
const requestTimeout = 10 * time.Second

// NotFoundError reports that no canvas on the server carries the requested
// name. It aborts the cycle but is not fatal; the canvas may appear later.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("canvas %q not found", e.Name)
}

// APIError is a non-2xx reply from the Canvus server.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("canvus API error (status %d): %s", e.StatusCode, truncate(e.Body, 200))
}

// Client is a minimal Canvus REST client. All calls are synchronous and
// authenticated with the Private-Token header.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client for the given server base URL and API token.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// ListCanvases returns all canvases visible to the token.
func (c *Client) ListCanvases(ctx context.Context) ([]models.Canvas, error) {
	var canvases []models.Canvas
	if err := c.do(ctx, http.MethodGet, "/api/v1/canvases", nil, &canvases); err != nil {
		return nil, err
	}
	return canvases, nil
}

// GetCanvasByName finds the first canvas whose name equals name.
func (c *Client) GetCanvasByName(ctx context.Context, name string) (*models.Canvas, error) {
	canvases, err := c.ListCanvases(ctx)
	if err != nil {
		return nil, err
	}
	for i := range canvases {
		if canvases[i].Name == name {
			return &canvases[i], nil
		}
	}
	return nil, &NotFoundError{Name: name}
}

// ListNotes returns all notes on the given canvas.
func (c *Client) ListNotes(ctx context.Context, canvasID string) ([]models.Note, error) {
	var notes []models.Note
	path := fmt.Sprintf("/api/v1/canvases/%s/notes", canvasID)
	if err := c.do(ctx, http.MethodGet, path, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// GetNote fetches the current details of a single note.
func (c *Client) GetNote(ctx context.Context, canvasID, noteID string) (*models.Note, error) {
	var note models.Note
	path := fmt.Sprintf("/api/v1/canvases/%s/notes/%s", canvasID, noteID)
	if err := c.do(ctx, http.MethodGet, path, nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// UpdateNoteText patches a note's text, leaving all other fields untouched.
func (c *Client) UpdateNoteText(ctx context.Context, canvasID, noteID, text string) error {
	path := fmt.Sprintf("/api/v1/canvases/%s/notes/%s", canvasID, noteID)
	payload := map[string]string{"text": text}
	return c.do(ctx, http.MethodPatch, path, payload, nil)
}

// CreateNote creates a new note on the canvas.
func (c *Client) CreateNote(ctx context.Context, canvasID string, note models.NoteCreate) (*models.Note, error) {
	var created models.Note
	path := fmt.Sprintf("/api/v1/canvases/%s/notes", canvasID)
	if err := c.do(ctx, http.MethodPost, path, note, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateImage uploads an image widget as multipart form data: a "json" part
// carrying the widget metadata and a "data" part carrying the PNG bytes.
func (c *Client) CreateImage(ctx context.Context, canvasID string, meta models.ImageCreate, image []byte, filename string) error {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal image metadata: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	jsonHeader := textproto.MIMEHeader{}
	jsonHeader.Set("Content-Disposition", `form-data; name="json"`)
	jsonHeader.Set("Content-Type", "application/json")
	jsonPart, err := writer.CreatePart(jsonHeader)
	if err != nil {
		return fmt.Errorf("failed to create json part: %w", err)
	}
	if _, err := jsonPart.Write(metaJSON); err != nil {
		return fmt.Errorf("failed to write json part: %w", err)
	}

	dataHeader := textproto.MIMEHeader{}
	dataHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="data"; filename=%q`, filename))
	dataHeader.Set("Content-Type", "image/png")
	dataPart, err := writer.CreatePart(dataHeader)
	if err != nil {
		return fmt.Errorf("failed to create data part: %w", err)
	}
	if _, err := dataPart.Write(image); err != nil {
		return fmt.Errorf("failed to write image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/canvases/%s/images", c.baseURL, canvasID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return fmt.Errorf("failed to create image upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Private-Token", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("image upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return nil
}

// do performs a JSON request against the Canvus API and decodes the reply
// into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Private-Token", c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("canvus request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read canvus response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse canvus response: %w", err)
		}
	}
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
