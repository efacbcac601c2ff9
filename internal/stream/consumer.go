package stream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RishiKendai/overlap/internal/models"
	"github.com/RishiKendai/overlap/internal/preprocess"
	"github.com/RishiKendai/overlap/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Ingestor stores one corpus document.
type Ingestor interface {
	ProcessSubmission(ctx context.Context, submission *models.DocumentSubmission) (*models.Document, error)
}

// Consumer reads corpus documents from a Redis stream as part of a consumer
// group and hands them to an Ingestor.
type Consumer struct {
	client            *redis.Client
	streamKey         string
	consumerGroup     string
	consumerName      string
	ingestor          Ingestor
	retryHandler      *RetryHandler
	retentionDuration time.Duration

	batchSize           int64
	minIdle             time.Duration
	pelRecoveryInterval time.Duration
	cleanupInterval     time.Duration
	lastPELCheck        time.Time
}

func NewConsumer(
	client *redis.Client,
	streamKey string,
	consumerGroup string,
	consumerName string,
	ingestor Ingestor,
	retryHandler *RetryHandler,
	retentionDuration time.Duration,
) *Consumer {
	return &Consumer{
		client:              client,
		streamKey:           streamKey,
		consumerGroup:       consumerGroup,
		consumerName:        consumerName,
		ingestor:            ingestor,
		retryHandler:        retryHandler,
		retentionDuration:   retentionDuration,
		batchSize:           10,
		minIdle:             time.Minute,
		pelRecoveryInterval: 30 * time.Second,
		cleanupInterval:     time.Hour,
	}
}

// Start blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		log.Warn().Err(err).Str("group", c.consumerGroup).Msg("Failed to create consumer group")
	}

	// entries left pending by a crashed consumer
	if err := c.claimStale(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to recover pending entries on startup")
	}
	c.lastPELCheck = time.Now()

	go c.trimPeriodically(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.poll(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Str("stream", c.streamKey).Msg("Failed to read corpus stream")
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

func (c *Consumer) ensureGroup(ctx context.Context) error {
	// MKSTREAM creates the stream if it doesn't exist
	err := c.client.XGroupCreateMkStream(ctx, c.streamKey, c.consumerGroup, "$").Err()
	if err != nil {
		if strings.Contains(err.Error(), "BUSYGROUP") {
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	log.Info().
		Str("group", c.consumerGroup).
		Str("stream", c.streamKey).
		Msg("Created consumer group")
	return nil
}

// claimStale takes over entries other consumers left idle for too long.
func (c *Consumer) claimStale(ctx context.Context) error {
	start := "0-0"
	for {
		msgs, next, err := c.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   c.streamKey,
			Group:    c.consumerGroup,
			Consumer: c.consumerName,
			MinIdle:  c.minIdle,
			Start:    start,
			Count:    c.batchSize,
		}).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to claim pending entries: %w", err)
		}

		if len(msgs) > 0 {
			log.Info().Int("claimed", len(msgs)).Msg("Claimed idle pending entries")
		}
		c.handleAll(ctx, msgs)

		if next == "0-0" || next == "" || ctx.Err() != nil {
			return nil
		}
		start = next
	}
}

func (c *Consumer) poll(ctx context.Context) error {
	if time.Since(c.lastPELCheck) > c.pelRecoveryInterval {
		if err := c.claimStale(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to recover pending entries")
		}
		c.lastPELCheck = time.Now()
	}

	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.consumerGroup,
		Consumer: c.consumerName,
		Streams:  []string{c.streamKey, ">"},
		Count:    c.batchSize,
		Block:    time.Second,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, s := range streams {
		if s.Stream == c.streamKey {
			c.handleAll(ctx, s.Messages)
		}
	}
	return nil
}

func (c *Consumer) handleAll(ctx context.Context, msgs []redis.XMessage) {
	for i := range msgs {
		if err := c.handle(ctx, &msgs[i]); err != nil {
			log.Error().Err(err).Str("message_id", msgs[i].ID).Msg("Failed to ingest stream entry")
		}
	}
}

// handle ingests one entry. Entries are acknowledged once ingested,
// dead-lettered or unparseable. A cancelled ctx or a failed dead-letter
// write leaves them pending for claimStale.
func (c *Consumer) handle(ctx context.Context, msg *redis.XMessage) error {
	fields := make(map[string]string, len(msg.Values))
	raw := make(map[string]interface{}, len(msg.Values))
	for k, v := range msg.Values {
		raw[k] = v
		if s, ok := v.(string); ok {
			fields[k] = s
		}
	}

	submission, err := ParseDocument(&StreamMessage{ID: msg.ID, Fields: fields})
	if err != nil {
		c.ack(ctx, msg.ID)
		return err
	}

	err = c.retryHandler.RetryWithBackoff(ctx, func() error {
		return ingest(ctx, c.ingestor, submission)
	}, msg.ID, raw)
	if err != nil && (ctx.Err() != nil || errors.Is(err, ErrDeadLetter)) {
		return err
	}

	c.ack(ctx, msg.ID)
	return err
}

// ingest treats a redelivered document that already exists as done and
// invalid documents as permanent failures.
func ingest(ctx context.Context, ingestor Ingestor, submission *models.DocumentSubmission) error {
	_, err := ingestor.ProcessSubmission(ctx, submission)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrDocumentExists):
		log.Debug().Str("documentId", submission.ID).Msg("Document already ingested")
		return nil
	case errors.Is(err, preprocess.ErrEmptyDocument):
		return Permanent(err)
	default:
		return err
	}
}

func (c *Consumer) ack(ctx context.Context, id string) {
	if err := c.client.XAck(ctx, c.streamKey, c.consumerGroup, id).Err(); err != nil {
		log.Error().Err(err).Str("message_id", id).Msg("Failed to acknowledge stream entry")
	}
}

// trim drops entries older than the retention window.
func (c *Consumer) trim(ctx context.Context) error {
	cutoff := time.Now().Add(-c.retentionDuration)
	minID := fmt.Sprintf("%d-0", cutoff.UnixMilli())

	trimmed, err := c.client.XTrimMinID(ctx, c.streamKey, minID).Result()
	if err != nil {
		return fmt.Errorf("failed to trim stream: %w", err)
	}
	if trimmed > 0 {
		log.Debug().
			Int64("trimmed", trimmed).
			Str("cutoff", cutoff.Format(time.RFC3339)).
			Msg("Trimmed corpus stream")
	}
	return nil
}

func (c *Consumer) trimPeriodically(ctx context.Context) {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		if err := c.trim(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("Failed to trim corpus stream")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
