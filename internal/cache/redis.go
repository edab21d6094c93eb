package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lucavt/carpool/config"
	"github.com/lucavt/carpool/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client   *redis.Client
	ridesTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, ridesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		ridesTTL: ridesTTL,
	}
}

func (c *RedisCache) GetRides(ctx context.Context) ([]domain.Ride, error) {
	data, err := c.client.Get(ctx, ridesKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var rides []domain.Ride
	if err := json.Unmarshal(data, &rides); err != nil {
		return nil, err
	}
	return rides, nil
}

func (c *RedisCache) SetRides(ctx context.Context, rides []domain.Ride) error {
	payload, err := json.Marshal(rides)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, ridesKey(), payload, c.ridesTTL).Err()
}

func (c *RedisCache) InvalidateRides(ctx context.Context) error {
	return c.client.Del(ctx, ridesKey()).Err()
}

func ridesKey() string {
	return "cache:rides:pending"
}
