// Package messaging provides inter-agent communication over Redis Streams.
// Each agent owns one stream; workflow results and feedback are appended as
// envelopes that subscribers tail.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/inkworks/atelier/internal/agent"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const streamPrefix = "atelier:agent:"

// Envelope wraps an agent message with bus-level identity.
type Envelope struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Message   agent.Message `json:"message"`
}

// Bus is a Redis Streams message bus between agents.
type Bus struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewBus connects to Redis and verifies the connection.
func NewBus(redisURL string, logger *zap.Logger) (*Bus, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Bus{rdb: rdb, logger: logger}, nil
}

// Publish appends a message to the receiver's stream.
func (b *Bus) Publish(ctx context.Context, msg agent.Message) error {
	env := Envelope{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Message:   msg,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	stream := streamPrefix + msg.Receiver
	if err := b.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{"data": string(data)},
	}).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", stream, err)
	}

	b.logger.Debug("published message",
		zap.String("sender", msg.Sender),
		zap.String("receiver", msg.Receiver),
		zap.String("type", msg.Type))
	return nil
}

// Subscribe tails an agent's stream, starting from new messages. Cancel the
// context to stop; the returned channel closes on exit.
func (b *Bus) Subscribe(ctx context.Context, agentID string) <-chan Envelope {
	ch := make(chan Envelope, 16)
	stream := streamPrefix + agentID

	go func() {
		defer close(ch)
		lastID := "$"

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			results, err := b.rdb.XRead(ctx, &redis.XReadArgs{
				Streams: []string{stream, lastID},
				Count:   10,
				Block:   2 * time.Second,
			}).Result()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				continue
			}

			for _, r := range results {
				for _, msg := range r.Messages {
					lastID = msg.ID
					data, ok := msg.Values["data"].(string)
					if !ok {
						continue
					}
					var env Envelope
					if json.Unmarshal([]byte(data), &env) == nil {
						select {
						case ch <- env:
						case <-ctx.Done():
							return
						}
					}
				}
			}
		}
	}()

	return ch
}

// Close shuts down the Redis connection.
func (b *Bus) Close() error {
	return b.rdb.Close()
}
