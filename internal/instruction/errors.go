package instruction

import (
	"context"
	"errors"

	"canvaspilot/internal/canvus"
	"canvaspilot/internal/genai"
)

// ErrorKind classifies cycle failures for logs and metrics. Every kind
// aborts the cycle; none is retried.
func ErrorKind(err error) string {
	var notFound *canvus.NotFoundError
	var apiErr *canvus.APIError
	var authErr *genai.AuthError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &notFound):
		return "canvas_not_found"
	case errors.As(err, &authErr):
		return "auth"
	case errors.Is(err, genai.ErrUnknownArtifactType):
		return "unknown_artifact_type"
	case errors.Is(err, genai.ErrMalformedReply):
		return "malformed_reply"
	case errors.As(err, &apiErr):
		return "transport"
	default:
		return "transport"
	}
}
