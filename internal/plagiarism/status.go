package plagiarism

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/overlap/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrStatusNotFound is returned for unknown or expired check ids.
var ErrStatusNotFound = errors.New("check status not found")

const (
	statusKeyPrefix = "overlap_check_status:"
	statusTTL       = 12 * time.Hour
)

var validSteps = map[models.Step]bool{
	models.StepIdle:       true,
	models.StepPatternSet: true,
	models.StepSearching:  true,
	models.StepScored:     true,
	models.StepFailed:     true,
}

// StatusStore keeps the step of asynchronous checks in Redis.
type StatusStore struct {
	client *redis.Client
}

func NewStatusStore(client *redis.Client) *StatusStore {
	return &StatusStore{client: client}
}

func (s *StatusStore) Update(ctx context.Context, checkID string, step models.Step) error {
	if !validSteps[step] {
		return fmt.Errorf("unknown step: %s", step)
	}

	rkey := statusKeyPrefix + checkID

	err := s.client.Set(ctx, rkey, string(step), statusTTL).Err()
	if err != nil {
		log.Error().Err(err).
			Str("step", string(step)).
			Str("checkID", checkID).
			Str("redisKey", rkey).
			Msg("Failed to update status in Redis")
		return fmt.Errorf("failed to update status in Redis: %w", err)
	}

	log.Trace().
		Str("step", string(step)).
		Str("checkID", checkID).
		Msg("Status updated in Redis")

	return nil
}

func (s *StatusStore) Get(ctx context.Context, checkID string) (models.Step, error) {
	val, err := s.client.Get(ctx, statusKeyPrefix+checkID).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrStatusNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read status from Redis: %w", err)
	}
	return models.Step(val), nil
}
