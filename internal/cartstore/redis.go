package cartstore

import (
	"context"
	"time"

	"github.com/Vjossaab/commercify-client/pkg/errors"
	"github.com/Vjossaab/commercify-client/pkg/logger"
	"github.com/Vjossaab/commercify-client/pkg/redis"
	"github.com/Vjossaab/commercify-client/pkg/types"
)

// kv is the slice of the redis client the store needs.
type kv interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisStore keeps the cart snapshot under a single redis key, no TTL.
type RedisStore struct {
	client kv
	key    string
	logg   *logger.Logger
}

// NewRedisStore builds a store over the shared redis client.
func NewRedisStore(client kv, key string, logg *logger.Logger) *RedisStore {
	return &RedisStore{client: client, key: key, logg: logg}
}

// Save overwrites the snapshot with the current lines.
func (s *RedisStore) Save(ctx context.Context, lines types.Lines) error {
	payload, err := encodeLines(lines)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "encoding cart snapshot")
	}
	if err := s.client.Set(ctx, s.key, payload, 0); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "saving cart snapshot")
	}
	return nil
}

// Restore loads the persisted lines. A missing key restores an empty cart;
// a corrupt payload is discarded and cleared, also restoring empty.
func (s *RedisStore) Restore(ctx context.Context) (types.Lines, error) {
	payload, err := s.client.Get(ctx, s.key)
	if redis.IsNil(err) {
		return types.Lines{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "restoring cart snapshot")
	}

	lines, decodeErr := decodeLines(payload)
	if decodeErr != nil {
		s.logg.Warn(ctx, errors.Wrap(errors.CodeCorruptState, decodeErr, "discarding corrupt cart snapshot").Error())
		if err := s.client.Del(ctx, s.key); err != nil {
			s.logg.Error(ctx, "clearing corrupt cart snapshot", err)
		}
		return types.Lines{}, nil
	}
	return lines, nil
}

// Clear drops the snapshot.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "clearing cart snapshot")
	}
	return nil
}
