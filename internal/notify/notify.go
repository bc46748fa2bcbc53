package notify

import (
	"context"
	"encoding/json"
	"fmt"

	redis "github.com/redis/go-redis/v9"
)

const (
	EventOrderNew    = "order:new"
	EventOrderUpdate = "order:update"
)

// Notifier pushes order events to connected front-of-house screens.
type Notifier interface {
	Publish(ctx context.Context, event string, payload any) error
}

type Noop struct{}

func (Noop) Publish(_ context.Context, _ string, _ any) error {
	return nil
}

// RedisNotifier publishes each event as JSON on channel prefix+event.
type RedisNotifier struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisNotifier(client redis.UniversalClient, prefix string) *RedisNotifier {
	return &RedisNotifier{client: client, prefix: prefix}
}

func (n *RedisNotifier) Channel(event string) string {
	return n.prefix + event
}

func (n *RedisNotifier) Publish(ctx context.Context, event string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", event, err)
	}
	return n.client.Publish(ctx, n.Channel(event), body).Err()
}
