package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wanirfan/atlast/internal/agent/core"
)

const historyKeyPrefix = "history:"

// Conn opens and pings a Redis client
func Conn(ctx context.Context, host string, port int, pass string, db int, timeout time.Duration) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", host, port),
		DialTimeout: timeout,
		Password:    pass,
		DB:          db,
	})

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, err
	}
	if pong != "PONG" {
		return nil, fmt.Errorf("expected PONG, got %s", pong)
	}

	return client, nil
}

// Store keeps history as JSON values in Redis with a sliding TTL
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{client: client, ttl: ttl}
}

func key(sessionID string, domain core.Domain) string {
	return historyKeyPrefix + string(domain) + ":" + sessionID
}

func (s *Store) History(ctx context.Context, sessionID string, domain core.Domain) ([]core.Message, error) {
	val, err := s.client.Get(ctx, key(sessionID, domain)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var msgs []core.Message
	if err := json.Unmarshal([]byte(val), &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *Store) Append(ctx context.Context, sessionID string, domain core.Domain, msgs ...core.Message) error {
	existing, err := s.History(ctx, sessionID, domain)
	if err != nil {
		return err
	}
	existing = append(existing, msgs...)
	data, err := json.Marshal(existing)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key(sessionID, domain), data, s.ttl).Err()
}

func (s *Store) Clear(ctx context.Context, sessionID string, domain core.Domain) error {
	return s.client.Del(ctx, key(sessionID, domain)).Err()
}
