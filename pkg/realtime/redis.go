package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisHub distributes events across API replicas through Redis pub/sub.
type RedisHub struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisHub wraps a connected client.
func NewRedisHub(client *redis.Client, logger *zap.Logger) *RedisHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisHub{client: client, logger: logger}
}

// Publish serialises the event and publishes it on the topic channel.
func (h *RedisHub) Publish(ctx context.Context, topic, eventType string, payload interface{}) error {
	evt, err := newEvent(topic, eventType, payload)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := h.client.Publish(ctx, topic, raw).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe opens a pub/sub connection for topic.
func (h *RedisHub) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	pubsub := h.client.Subscribe(ctx, topic)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &redisSubscription{pubsub: pubsub, cancel: cancel, ch: make(chan Event, subscriberBuffer)}
	go sub.pump(subCtx, h.logger)
	return sub, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	cancel context.CancelFunc
	ch     chan Event
	once   sync.Once
}

func (s *redisSubscription) Events() <-chan Event {
	return s.ch
}

func (s *redisSubscription) pump(ctx context.Context, logger *zap.Logger) {
	defer close(s.ch)
	msgs := s.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			_ = s.pubsub.Close()
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var evt Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				logger.Warn("discarding malformed realtime event", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			select {
			case s.ch <- evt:
			default:
			}
		}
	}
}

func (s *redisSubscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}
