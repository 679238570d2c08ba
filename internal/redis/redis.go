package redis

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

// EventsChannel carries launch and lifecycle events between server instances.
const EventsChannel = "sandbox_events"

// SandboxStateKey is where a sandbox snapshot lives.
func SandboxStateKey(token string) string {
	return "sandbox:" + token + ":state"
}

// Connect establishes a connection to Redis
func Connect(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Printf("[REDIS] Connected to %s (db=%d)", opt.Addr, opt.DB)
	return client, nil
}
