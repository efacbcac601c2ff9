package stream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrDeadLetter is returned when an entry exhausted its retries but could not
// be written to the dead-letter stream.
var ErrDeadLetter = errors.New("dead-letter write failed")

// RetryHandler retries ingestion with exponential backoff and moves entries
// that keep failing to a dead-letter stream.
type RetryHandler struct {
	client        *redis.Client
	deadLetterKey string
	maxRetries    int
	baseDelay     time.Duration
	maxDelay      time.Duration
}

func NewRetryHandler(client *redis.Client, deadLetterKey string) *RetryHandler {
	return &RetryHandler{
		client:        client,
		deadLetterKey: deadLetterKey,
		maxRetries:    3,
		baseDelay:     500 * time.Millisecond,
		maxDelay:      10 * time.Second,
	}
}

// WithBackoff overrides the retry count and the first delay.
func (h *RetryHandler) WithBackoff(maxRetries int, baseDelay time.Duration) *RetryHandler {
	h.maxRetries = maxRetries
	h.baseDelay = baseDelay
	return h
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return &permanentError{err: err}
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// RetryWithBackoff calls fn until it succeeds or the retries are used up.
// The last error is returned after the entry was dead-lettered, joined with
// ErrDeadLetter when that write failed. A cancelled ctx stops retrying
// without dead-lettering.
func (h *RetryHandler) RetryWithBackoff(ctx context.Context, fn func() error, messageID string, fields map[string]interface{}) error {
	var err error
	delay := h.baseDelay

	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = min(delay*2, h.maxDelay)
		}

		err = fn()
		if err == nil {
			if attempt > 0 {
				log.Info().Str("message_id", messageID).Int("attempt", attempt+1).Msg("Message processed after retry")
			}
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			break
		}

		log.Warn().
			Err(err).
			Str("message_id", messageID).
			Int("attempt", attempt+1).
			Int("max_retries", h.maxRetries).
			Msg("Processing failed")
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if dlqErr := h.deadLetter(ctx, messageID, fields, err); dlqErr != nil {
		log.Error().Err(dlqErr).Str("message_id", messageID).Msg("Failed to move message to dead-letter stream")
		return errors.Join(err, fmt.Errorf("%w: %w", ErrDeadLetter, dlqErr))
	}
	return err
}

func (h *RetryHandler) deadLetter(ctx context.Context, messageID string, fields map[string]interface{}, cause error) error {
	values := make(map[string]interface{}, len(fields)+3)
	for k, v := range fields {
		values[k] = v
	}
	values["original_id"] = messageID
	values["error"] = cause.Error()
	values["failed_at"] = time.Now().UTC().Format(time.RFC3339)

	if err := h.client.XAdd(ctx, &redis.XAddArgs{
		Stream: h.deadLetterKey,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("failed to add to dead-letter stream: %w", err)
	}

	log.Warn().
		Str("message_id", messageID).
		Str("stream", h.deadLetterKey).
		Msg("Message moved to dead-letter stream")
	return nil
}
