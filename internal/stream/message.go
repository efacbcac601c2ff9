package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/RishiKendai/overlap/internal/models"
)

// ErrMalformedMessage is returned for stream entries that can never be ingested.
var ErrMalformedMessage = errors.New("malformed stream message")

// StreamMessage is a Redis stream entry with its string fields.
type StreamMessage struct {
	ID     string
	Fields map[string]string
}

// ParseDocument reads a corpus document from a stream entry. The entry carries
// either a "payload" field holding a JSON DocumentSubmission, or flat
// "id", "title", "text" and "source" fields.
func ParseDocument(msg *StreamMessage) (*models.DocumentSubmission, error) {
	var submission models.DocumentSubmission

	if payload, ok := msg.Fields["payload"]; ok {
		if err := json.Unmarshal([]byte(payload), &submission); err != nil {
			return nil, fmt.Errorf("%w: invalid payload: %v", ErrMalformedMessage, err)
		}
	} else {
		submission = models.DocumentSubmission{
			ID:     msg.Fields["id"],
			Title:  msg.Fields["title"],
			Text:   msg.Fields["text"],
			Source: msg.Fields["source"],
		}
	}

	if strings.TrimSpace(submission.Text) == "" {
		return nil, fmt.Errorf("%w: missing text", ErrMalformedMessage)
	}
	if submission.Source == "" {
		submission.Source = models.SourceStream
	}
	return &submission, nil
}
