package database

import (
	"context"
	"log"

	"github.com/campuspay/ledger/internal/config"
	"github.com/go-redis/redis/v8"
)

// InitRedis initializes the Redis client. Returns nil when Redis is
// unreachable; the event sink degrades to log-only in that case.
func InitRedis(cfg config.RedisConfig) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("Redis connection failed, continuing without Redis: %v", err)
		return nil
	}

	log.Println("Redis connection established")
	return rdb
}
