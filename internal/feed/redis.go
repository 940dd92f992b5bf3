package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/securemov/ana-chat/backend/internal/model/chat"
)

// DefaultChannel is the Redis pub/sub channel carrying new messages.
const DefaultChannel = "securemov:messages"

// RedisBroker shares the feed between instances. Publish goes to Redis; Run
// relays everything received on the channel, including this instance's own
// messages, into the local Hub.
type RedisBroker struct {
	client  *redis.Client
	channel string
	hub     *Hub
	logger  zerolog.Logger
}

// NewRedisBroker connects to redisURL.
func NewRedisBroker(ctx context.Context, redisURL, channel string, hub *Hub, logger zerolog.Logger) (*RedisBroker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBroker{client: client, channel: channel, hub: hub, logger: logger}, nil
}

// Publish sends message to the shared channel.
func (b *RedisBroker) Publish(ctx context.Context, message chat.Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal feed message: %w", err)
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

// Run relays channel traffic into the hub until ctx is done.
func (b *RedisBroker) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var message chat.Message
			if err := json.Unmarshal([]byte(msg.Payload), &message); err != nil {
				b.logger.Warn().Err(err).Msg("discarding malformed feed payload")
				continue
			}
			_ = b.hub.Publish(ctx, message)
		}
	}
}

// Ping checks the Redis connection.
func (b *RedisBroker) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (b *RedisBroker) Close() error {
	return b.client.Close()
}
