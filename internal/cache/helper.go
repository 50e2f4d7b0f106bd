package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"agora/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix = "user:%d"
	PostKeyPrefix = "post:%d"

	// ModerationQueueKey holds the aggregated moderation queue.
	ModerationQueueKey = "moderation:queue"
	// DashboardStatsKey holds the admin dashboard payload.
	DashboardStatsKey = "admin:dashboard"
	// TokenBlacklistPrefix marks revoked JWT ids.
	TokenBlacklistPrefix = "blacklist:%s"
)

const (
	UserTTL      = 5 * time.Minute
	PostTTL      = 30 * time.Minute
	DashboardTTL = time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func BlacklistKey(jti string) string {
	return fmt.Sprintf(TokenBlacklistPrefix, jti)
}

// generationTTL bounds how long an idle key's generation counter lives. An
// expired counter reads as zero, which only ever causes a skipped fill.
const generationTTL = 24 * time.Hour

var errStaleFill = errors.New("cache generation changed during fill")

func generationKey(key string) string {
	return key + ":gen"
}

// Invalidate removes keys from the cache and bumps each key's generation so
// that a fill which started before the invalidation cannot write its result
// back. Failures are logged and swallowed; a short TTL bounds staleness.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	_, err := client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, k := range keys {
			p.Incr(ctx, generationKey(k))
			p.Expire(ctx, generationKey(k), generationTTL)
		}
		p.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		slog.WarnContext(ctx, "cache invalidation failed", "keys", keys, "error", err)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

// InvalidateModerationQueue drops the cached queue and the dashboard that
// shows its pending count.
func InvalidateModerationQueue(ctx context.Context) {
	Invalidate(ctx, ModerationQueueKey, DashboardStatsKey)
}

// Aside implements cache-aside for JSON-serializable values. On a hit dest is
// filled from Redis; on a miss fetch fills dest and the result is stored for
// ttl, unless the key was invalidated while fetch ran. A zero ttl or a
// missing client disables caching and fetch always runs.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if client == nil || ttl <= 0 {
		return fetch()
	}

	raw, err := client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			observability.CacheLookups.WithLabelValues("hit").Inc()
			return nil
		}
		observability.CacheLookups.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		observability.CacheLookups.WithLabelValues("miss").Inc()
	default:
		observability.CacheLookups.WithLabelValues("error").Inc()
		slog.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}

	gen, genErr := generation(ctx, client, key)

	if err := fetch(); err != nil {
		return err
	}
	if genErr != nil {
		slog.WarnContext(ctx, "cache generation read failed, not caching", "key", key, "error", genErr)
		return nil
	}

	payload, err := json.Marshal(dest)
	if err != nil {
		return nil
	}
	switch err := fill(ctx, key, gen, payload, ttl); {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		observability.CacheLookups.WithLabelValues("stale").Inc()
	default:
		slog.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
	return nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func generation(ctx context.Context, c getter, key string) (int64, error) {
	n, err := c.Get(ctx, generationKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// fill writes payload only if key's generation still equals gen. WATCH makes
// an invalidation that lands between the check and the write abort the SET.
func fill(ctx context.Context, key string, gen int64, payload []byte, ttl time.Duration) error {
	return client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := generation(ctx, tx, key)
		if err != nil {
			return err
		}
		if cur != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, payload, ttl)
			return nil
		})
		return err
	}, generationKey(key))
}
