package notify

import (
	"context"
	"encoding/json"
	"testing"

	redis "github.com/redis/go-redis/v9"
)

type publishRecorder struct {
	redis.UniversalClient
	channel string
	message []byte
}

func (p *publishRecorder) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	p.channel = channel
	p.message = message.([]byte)
	return redis.NewIntResult(1, nil)
}

func TestRedisNotifierPublishesJSONOnPrefixedChannel(t *testing.T) {
	client := &publishRecorder{}
	n := NewRedisNotifier(client, "restopos:")

	err := n.Publish(context.Background(), EventOrderNew, map[string]any{"order_id": 7})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if client.channel != "restopos:order:new" {
		t.Fatalf("unexpected channel %q", client.channel)
	}

	var body map[string]any
	if err := json.Unmarshal(client.message, &body); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if body["order_id"] != float64(7) {
		t.Fatalf("unexpected payload %v", body)
	}
}

func TestRedisNotifierRejectsUnencodablePayload(t *testing.T) {
	client := &publishRecorder{}
	n := NewRedisNotifier(client, "")

	if err := n.Publish(context.Background(), EventOrderUpdate, make(chan int)); err == nil {
		t.Fatalf("expected encode error")
	}
	if client.channel != "" {
		t.Fatalf("expected nothing published, got %q", client.channel)
	}
}
