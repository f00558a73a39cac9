package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RedisBroker fans events out through Redis pub/sub so every API instance
// sees changes committed by any other. Each topic maps to one channel,
// "<prefix>:<topic>", or just the topic when the prefix is empty.
type RedisBroker struct {
	client   *redis.Client
	prefix   string
	capacity int
	logger   zerolog.Logger
}

func NewRedisBroker(client *redis.Client, prefix string) *RedisBroker {
	if prefix = strings.TrimRight(strings.TrimSpace(prefix), ":"); prefix != "" {
		prefix += ":"
	}
	return &RedisBroker{
		client:   client,
		prefix:   prefix,
		capacity: defaultSubscriberCapacity,
		logger:   log.With().Str("component", "realtime.redis").Logger(),
	}
}

// DialRedis parses a redis:// URL and pings the server.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

func (b *RedisBroker) channel(topic string) string {
	return b.prefix + strings.TrimSpace(topic)
}

func (b *RedisBroker) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel(event.Topic), payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", b.channel(event.Topic), err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, topic string, match Predicate) (*Subscription, error) {
	pubsub := b.client.Subscribe(ctx, b.channel(topic))
	// Wait for the subscription confirmation so no event published after
	// Subscribe returns can be missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", b.channel(topic), err)
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := newSubscriber(topic, b.capacity, match, b.logger)

	go func() {
		defer sub.close()
		defer pubsub.Close()
		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.logger.Warn().Err(err).Str("channel", msg.Channel).Msg("discarding malformed event")
					continue
				}
				if match.match(event) {
					sub.deliver(event)
				}
			}
		}
	}()

	return &Subscription{Events: sub.ch, cancel: cancel}, nil
}

func (b *RedisBroker) Close() error {
	return b.client.Close()
}
