package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/redis/go-redis/v9"
)

// ModerationChannel is the Redis pub/sub channel carrying moderation events.
const ModerationChannel = "moderation:events"

// Notifier publishes moderation events into Redis so every API instance can
// forward them to its connected admins.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a Notifier. A nil client turns every call into a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

func (n *Notifier) PublishModerationEvent(ctx context.Context, ev ModerationEvent) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := ev.Encode()
	if err != nil {
		return fmt.Errorf("marshal moderation event: %w", err)
	}
	return n.rdb.Publish(ctx, ModerationChannel, payload).Err()
}

// StartModerationSubscriber subscribes to ModerationChannel and calls
// onMessage for every payload until ctx is cancelled.
func (n *Notifier) StartModerationSubscriber(ctx context.Context, onMessage func(payload string)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, ModerationChannel)
	// Wait for the subscription confirmation so publishes issued right after
	// this call are not lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", ModerationChannel, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							slog.Error("panic in moderation subscriber", "panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Payload)
				}()
			}
		}
	}()

	return nil
}
