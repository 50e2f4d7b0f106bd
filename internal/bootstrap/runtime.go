// Package bootstrap connects the runtime dependencies shared by the server
// and the command line tools.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/notifications"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and Redis. A nil Redis client means
// the cache and cross-instance events are disabled.
func InitRuntime(ctx context.Context, cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}
	database.DB = db

	rdb := cache.InitRedis(ctx, cfg.RedisURL)
	return db, rdb, nil
}

// EventPublisher assembles the moderation event fan-out. Events go to Redis
// when available so every instance relays them to its admins; otherwise
// they go straight to local, which may be nil. NATS is added when
// configured. The returned func releases the NATS connection.
func EventPublisher(cfg *config.Config, rdb *redis.Client, local notifications.Publisher) (*notifications.Fanout, func()) {
	fanout := notifications.NewFanout()
	if rdb != nil {
		fanout.Add("redis", notifications.NewNotifier(rdb))
	} else if local != nil {
		fanout.Add("local", local)
	}

	closeFn := func() {}
	if cfg.NATSURL != "" {
		pub, err := notifications.ConnectNATS(cfg.NATSURL)
		if err != nil {
			slog.Warn("nats unavailable, moderation events stay in-process", "error", err)
		} else {
			fanout.Add("nats", pub)
			closeFn = pub.Close
		}
	}
	return fanout, closeFn
}
