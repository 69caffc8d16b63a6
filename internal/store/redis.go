package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"coutloa/internal/models"
)

// Redis stores each quote as a JSON value under quote:<id>, expiry handled
// by the server itself.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(addr, password string, db int, ttl time.Duration) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Redis{client: rdb, ttl: ttl}
}

// Ping checks the connection, called once at startup so an unreachable
// Redis can be detected before the server takes traffic.
func (s *Redis) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Redis) Close() error { return s.client.Close() }

func redisKey(id string) string { return "quote:" + id }

func (s *Redis) Save(ctx context.Context, name string, cfg models.LeaseConfig) (Quote, error) {
	q := Quote{
		ID:        uuid.NewString(),
		Name:      name,
		Config:    cfg,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(q)
	if err != nil {
		return Quote{}, err
	}
	if err := s.client.Set(ctx, redisKey(q.ID), data, s.ttl).Err(); err != nil {
		return Quote{}, err
	}
	return q, nil
}

func (s *Redis) Get(ctx context.Context, id string) (Quote, error) {
	data, err := s.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Quote{}, ErrNotFound
	}
	if err != nil {
		return Quote{}, err
	}
	var q Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return Quote{}, err
	}
	return q, nil
}

func (s *Redis) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, redisKey(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
