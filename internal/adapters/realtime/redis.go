package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis pub/sub channel that carries every topic.
const DefaultChannel = "eventbooking:changes"

type envelope struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// RedisFeed fans changes out through Redis so every API instance sees them.
// Publish goes to Redis; Run relays Redis messages into the local hub that
// Subscribe reads from.
type RedisFeed struct {
	client  *redis.Client
	channel string
	local   *Hub
	logger  *slog.Logger
}

// NewRedisFeed connects to redisURL (redis://...) and checks the connection.
func NewRedisFeed(ctx context.Context, redisURL string, logger *slog.Logger) (*RedisFeed, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisFeed{client: client, channel: DefaultChannel, local: NewHub(0), logger: logger}, nil
}

func (f *RedisFeed) Publish(ctx context.Context, topic string, payload []byte) error {
	data, err := encodeEnvelope(topic, payload)
	if err != nil {
		return err
	}
	if err := f.client.Publish(ctx, f.channel, data).Err(); err != nil {
		return fmt.Errorf("publish to redis: %w", err)
	}
	return nil
}

func (f *RedisFeed) Subscribe(topic string) (<-chan []byte, func()) {
	return f.local.Subscribe(topic)
}

// Run relays Redis messages to local subscribers until ctx is done.
func (f *RedisFeed) Run(ctx context.Context) {
	sub := f.client.Subscribe(ctx, f.channel)
	defer sub.Close()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			topic, payload, err := decodeEnvelope([]byte(msg.Payload))
			if err != nil {
				f.logger.Warn("dropping malformed change message", "err", err)
				continue
			}
			f.local.deliver(topic, payload)
		}
	}
}

// Close releases the Redis connection.
func (f *RedisFeed) Close() error {
	return f.client.Close()
}

func encodeEnvelope(topic string, payload []byte) ([]byte, error) {
	if !json.Valid(payload) {
		return nil, fmt.Errorf("change payload for %q is not valid JSON", topic)
	}
	return json.Marshal(envelope{Topic: topic, Payload: payload})
}

func decodeEnvelope(data []byte) (string, []byte, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, err
	}
	if env.Topic == "" {
		return "", nil, fmt.Errorf("change message has no topic")
	}
	return env.Topic, env.Payload, nil
}
