package events

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel task activity is broadcast on.
const DefaultChannel = "task_events"

// RedisPublisher broadcasts events on a Redis pub/sub channel so other
// processes, such as a websocket fanout tier, can relay them to clients.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher connects to Redis using a URL of the form
// redis://[:password@]host:port/db.
func NewRedisPublisher(url, channel string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: redis.NewClient(opts), channel: channel}, nil
}

// Publish serializes the event and broadcasts it. Failures are logged and
// dropped.
func (p *RedisPublisher) Publish(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("events: marshal %s event: %v", event.Type, err)
		return
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		log.Printf("events: publish %s event: %v", event.Type, err)
	}
}

// Close releases the Redis connection.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
