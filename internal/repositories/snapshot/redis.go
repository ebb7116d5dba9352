package snapshot

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/delveforge/delve-engine/internal/errors"
	"github.com/delveforge/delve-engine/internal/pkg/clock"
	redisclient "github.com/delveforge/delve-engine/internal/redis"
)

const (
	// Key pattern: snapshot:{profile_id}
	snapshotKeyPrefix = "snapshot:"

	errProfileIDEmpty = "profile ID cannot be empty"
	errSnapshotNil    = "snapshot cannot be nil"
)

// Config holds the configuration for the Redis repository
type Config struct {
	Client redisclient.Client
	Clock  clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c.Client == nil {
		return errors.InvalidArgument("redis client is required")
	}
	if c.Clock == nil {
		return errors.InvalidArgument("clock is required")
	}
	return nil
}

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// NewRedisRepository creates a new Redis repository for snapshots
func NewRedisRepository(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  cfg.Clock,
	}, nil
}

// Ensure redisRepository implements Repository
var _ Repository = (*redisRepository)(nil)

// Get retrieves a profile's snapshot
func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ProfileID == "" {
		return nil, errors.InvalidArgument(errProfileIDEmpty)
	}

	key := r.buildKey(input.ProfileID)

	snapshotJSON, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("no snapshot for profile %s", input.ProfileID)
		}
		return nil, errors.Wrapf(err, "failed to get snapshot from Redis")
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(snapshotJSON), &snap); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeDataLoss,
			"failed to unmarshal snapshot")
	}

	return &GetOutput{
		Snapshot: &snap,
	}, nil
}

// Save stores a profile's snapshot, replacing any previous one
func (r *redisRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if input.Snapshot == nil {
		return nil, errors.InvalidArgument(errSnapshotNil)
	}
	if input.Snapshot.ProfileID == "" {
		return nil, errors.InvalidArgument(errProfileIDEmpty)
	}

	snap := *input.Snapshot
	snap.SavedAt = r.clock.Now()

	snapshotJSON, err := json.Marshal(&snap)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal snapshot")
	}

	// Snapshots have no TTL; a profile's state lives until deleted
	key := r.buildKey(snap.ProfileID)
	if err := r.client.Set(ctx, key, snapshotJSON, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to store snapshot in Redis")
	}

	return &SaveOutput{
		SavedAt: snap.SavedAt,
	}, nil
}

// Delete removes a profile's snapshot
func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ProfileID == "" {
		return nil, errors.InvalidArgument(errProfileIDEmpty)
	}

	key := r.buildKey(input.ProfileID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to delete snapshot from Redis")
	}

	return &DeleteOutput{}, nil
}

// buildKey creates the Redis key for a profile's snapshot
func (r *redisRepository) buildKey(profileID string) string {
	return snapshotKeyPrefix + profileID
}
