package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ChannelPrefix namespaces relayed events: lexdesk:events:<topic>
const ChannelPrefix = "lexdesk:events:"

// RedisRelay forwards bus events to Redis pub/sub so other processes can follow changes.
type RedisRelay struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisRelay connects to Redis and verifies the connection
func NewRedisRelay(redisURL string, logger *slog.Logger) (*RedisRelay, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisRelay{client: client, logger: logger}, nil
}

// Channel returns the Redis channel an event topic is relayed on
func Channel(topic Topic) string {
	return ChannelPrefix + string(topic)
}

// Attach subscribes the relay to every topic on the bus
func (r *RedisRelay) Attach(bus Bus) {
	bus.Subscribe(TopicAll, "redis-relay", r.Handle)
}

// Handle publishes one event as JSON
func (r *RedisRelay) Handle(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	receivers, err := r.client.Publish(ctx, Channel(e.Topic), payload).Result()
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Topic, err)
	}

	r.logger.Debug("event relayed", "topic", e.Topic, "entity_id", e.EntityID, "receivers", receivers)
	return nil
}

// Close closes the Redis connection
func (r *RedisRelay) Close() error {
	return r.client.Close()
}
