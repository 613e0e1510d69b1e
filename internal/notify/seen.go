package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// seenTTL bounds how long delivered job IDs are remembered.
const seenTTL = 90 * 24 * time.Hour

// NewRedisClient creates and verifies a Redis client connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return rdb, nil
}

// RedisSeenSet remembers delivered job IDs per owner in a Redis set, so
// recurring runs never notify about the same posting twice.
type RedisSeenSet struct {
	rdb *redis.Client
}

func NewRedisSeenSet(rdb *redis.Client) *RedisSeenSet {
	return &RedisSeenSet{rdb: rdb}
}

func seenKey(owner string) string { return "jobscout:seen:" + owner }

// FilterNew returns the subset of ids the owner has not been notified about.
func (s *RedisSeenSet) FilterNew(ctx context.Context, owner string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}

	present, err := s.rdb.SMIsMember(ctx, seenKey(owner), members...).Result()
	if err != nil {
		return nil, fmt.Errorf("checking seen jobs for %s: %w", owner, err)
	}

	var fresh []string
	for i, id := range ids {
		if !present[i] {
			fresh = append(fresh, id)
		}
	}
	return fresh, nil
}

// MarkSeen records the ids as delivered and refreshes the set's TTL.
func (s *RedisSeenSet) MarkSeen(ctx context.Context, owner string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}

	key := seenKey(owner)
	if err := s.rdb.SAdd(ctx, key, members...).Err(); err != nil {
		return fmt.Errorf("marking jobs seen for %s: %w", owner, err)
	}
	if err := s.rdb.Expire(ctx, key, seenTTL).Err(); err != nil {
		return fmt.Errorf("refreshing seen ttl for %s: %w", owner, err)
	}
	return nil
}
