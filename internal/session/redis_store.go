package session

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/support-bot/internal/domain"
)

const redisKeyPrefix = "support-bot:session:"

// RedisStore keeps conversation state in Redis, one JSON blob per user.
// Lets several bot processes share dialogue state; no TTL is applied
// because flows stay open indefinitely until the user responds.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore instantiates the Redis-backed tracker.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, userID int64) (domain.Conversation, error) {
	data, err := s.client.Get(ctx, redisKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Conversation{}, nil
	}
	if err != nil {
		return domain.Conversation{}, err
	}

	var conv domain.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return domain.Conversation{}, err
	}
	return conv, nil
}

func (s *RedisStore) Set(ctx context.Context, userID int64, conv domain.Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKey(userID), data, 0).Err()
}

func (s *RedisStore) Clear(ctx context.Context, userID int64) error {
	return s.client.Del(ctx, redisKey(userID)).Err()
}

func redisKey(userID int64) string {
	return redisKeyPrefix + strconv.FormatInt(userID, 10)
}
