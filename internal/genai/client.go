package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	chatModel      = "gpt-3.5-turbo"
	maxReplyTokens = 500
	temperature    = 0.7
	imageSize      = "512x512"
)

// systemPrompt constrains the reply to one of the two artifact JSON shapes.
const systemPrompt = "You are an assistant that can generate text or images based on user instructions. " +
	"For the following instruction, decide whether to generate text or an image. " +
	"If you decide to generate text, respond with a JSON object like this:\n" +
	`{"type": "text", "content": "<the text you generated>"}` + "\n" +
	"If you decide to generate an image, respond with a JSON object like this:\n" +
	`{"type": "image", "content": "<the description of the image to generate>"}` + "\n" +
	"Do not include any additional text or explanations in your response."

// AuthError is a rejected credential. Fatal when raised by ValidateKey at
// startup; mid-run it aborts the cycle like any other error.
type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("generative service rejected credential (status %d)", e.StatusCode)
}

// Client talks to an OpenAI-compatible generative service.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

// New creates a client for the given base URL (e.g. https://api.openai.com/v1).
// Calls are rate limited to stay polite when a scan matches many notes at once.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		// Generation can be slow; the bound exists to avoid indefinite stalls.
		http:    &http.Client{Timeout: 120 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
	}
}

// ValidateKey probes the models endpoint to confirm the credential works.
// Called once at startup, before the poll loop begins.
func (c *Client) ValidateKey(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("failed to create validation request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("credential validation request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("credential validation failed (status %d)", resp.StatusCode)
	}
	return nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the instruction through a chat completion with the fixed
// artifact-shape system prompt and returns the trimmed reply text.
func (c *Client) Complete(ctx context.Context, instruction string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter interrupted: %w", err)
	}

	reqBody := chatRequest{
		Model: chatModel,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: instruction},
		},
		MaxTokens:   maxReplyTokens,
		Temperature: temperature,
	}

	var reply chatResponse
	if err := c.post(ctx, "/chat/completions", reqBody, &reply); err != nil {
		return "", err
	}
	if len(reply.Choices) == 0 {
		return "", fmt.Errorf("no choices in chat completion response")
	}
	return strings.TrimSpace(reply.Choices[0].Message.Content), nil
}

type imageRequest struct {
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// GenerateImage requests a fixed-size image for the description and returns
// the URL the service hosts the result at.
func (c *Client) GenerateImage(ctx context.Context, description string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter interrupted: %w", err)
	}

	reqBody := imageRequest{
		Prompt:         description,
		N:              1,
		Size:           imageSize,
		ResponseFormat: "url",
	}

	var reply imageResponse
	if err := c.post(ctx, "/images/generations", reqBody, &reply); err != nil {
		return "", err
	}
	if len(reply.Data) == 0 {
		return "", fmt.Errorf("no image data in response")
	}
	return reply.Data[0].URL, nil
}

// Download fetches generated image bytes from the URL returned by
// GenerateImage. The URL is pre-signed, so no auth header is sent.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image bytes: %w", err)
	}
	return data, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("generative service request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read generative service response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &AuthError{StatusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("generative service error (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse generative service response: %w", err)
	}
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
