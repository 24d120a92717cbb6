package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SlotStore keeps cart slots under mc:cart. With a positive TTL a slot expires after
// that long without reads or writes; zero keeps slots until deleted.
type SlotStore struct {
	client *Client
	ttl    time.Duration
}

func NewSlotStore(client *Client, ttl time.Duration) *SlotStore {
	if ttl < 0 {
		ttl = 0
	}
	return &SlotStore{client: client, ttl: ttl}
}

func (s *SlotStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.client.CartSlotKey(key), s.ttl)
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *SlotStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.client.CartSlotKey(key), value, s.ttl)
}

func (s *SlotStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.client.CartSlotKey(key))
}
