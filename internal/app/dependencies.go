package app

import (
	"context"
	"fmt"

	validator "github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	redis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/noah-isme/backend-pos/internal/config"
)

// Dependencies enumerates core services shared by the api and worker binaries.
type Dependencies struct {
	Context         context.Context
	DB              *pgxpool.Pool
	Redis           *redis.Client
	Validator       *validator.Validate
	Limiter         *limiter.Limiter
	LimiterStore    limiter.Store
	TaskClient      *asynq.Client
	TaskServer      *asynq.Server
	MetricsRegistry *prometheus.Registry
}

// NewLimiterStore wires a rate limiter store backed by Redis.
func NewLimiterStore(rdb *redis.Client) (limiter.Store, error) {
	return limiterredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: "pos:ratelimit"})
}

// NewRateLimiter builds a per-terminal request limiter.
func NewRateLimiter(rdb *redis.Client, perMinute int) (*limiter.Limiter, error) {
	store, err := NewLimiterStore(rdb)
	if err != nil {
		return nil, fmt.Errorf("limiter store: %w", err)
	}
	if perMinute <= 0 {
		perMinute = 600
	}
	rate, err := limiter.NewRateFromFormatted(fmt.Sprintf("%d-M", perMinute))
	if err != nil {
		return nil, fmt.Errorf("limiter rate: %w", err)
	}
	return limiter.New(store, rate), nil
}

// AsynqRedisOpt converts the configured Redis URL for asynq.
func AsynqRedisOpt(cfg *config.Config) (asynq.RedisConnOpt, error) {
	opt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return opt, nil
}

// NewTaskClient builds the asynq client used to enqueue receipt dispatch.
func NewTaskClient(cfg *config.Config) (*asynq.Client, error) {
	opt, err := AsynqRedisOpt(cfg)
	if err != nil {
		return nil, err
	}
	return asynq.NewClient(opt), nil
}

// NewTaskServer builds the asynq server the worker binary runs.
func NewTaskServer(cfg *config.Config) (*asynq.Server, error) {
	opt, err := AsynqRedisOpt(cfg)
	if err != nil {
		return nil, err
	}
	return asynq.NewServer(opt, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues:      map[string]int{"receipts": 5, "default": 1},
	}), nil
}
