package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type redisSlot struct {
	client *redis.Client
}

// NewRedisSlot keeps serialized stores as plain redis strings.
func NewRedisSlot(client *redis.Client) (Slot, error) {
	if client == nil {
		return nil, fmt.Errorf("redis slot requires a client")
	}
	return &redisSlot{client: client}, nil
}

func (s *redisSlot) Backend() string {
	return "redis"
}

func (s *redisSlot) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSlotEmpty
		}
		return nil, fmt.Errorf("failed to read slot %q: %w", key, err)
	}
	return data, nil
}

func (s *redisSlot) Write(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write slot %q: %w", key, err)
	}
	return nil
}
