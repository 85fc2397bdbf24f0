package genai

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedReply marks a generative reply that is not valid JSON or is
// missing a required field. The instruction fails; there is no retry.
var ErrMalformedReply = errors.New("malformed generative reply")

// ErrUnknownArtifactType marks a reply whose type is neither text nor image.
var ErrUnknownArtifactType = errors.New("unknown artifact type")

// ArtifactType tags the two artifact variants the model may produce.
type ArtifactType string

const (
	ArtifactText  ArtifactType = "text"
	ArtifactImage ArtifactType = "image"
)

// Artifact is the parsed generative reply: either generated text to place in
// a note, or a description of an image to generate.
type Artifact struct {
	Type    ArtifactType
	Content string
}

// ParseArtifact parses the model's reply strictly against the two-shape
// contract. Invalid JSON, a missing type or content, or an unrecognized type
// are all hard errors.
func ParseArtifact(raw string) (*Artifact, error) {
	var reply struct {
		Type    string  `json:"type"`
		Content *string `json:"content"`
	}
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}

	if reply.Type == "" {
		return nil, fmt.Errorf("%w: missing type field", ErrMalformedReply)
	}
	if reply.Content == nil {
		return nil, fmt.Errorf("%w: missing content field", ErrMalformedReply)
	}

	switch ArtifactType(reply.Type) {
	case ArtifactText, ArtifactImage:
		return &Artifact{Type: ArtifactType(reply.Type), Content: *reply.Content}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownArtifactType, reply.Type)
	}
}
