package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	UserRegistered = "user_registered"
	UserLoggedIn   = "user_logged_in"
	UserLoggedOut  = "user_logged_out"
)

// Producer publishes auth lifecycle events. A nil Producer is a no-op so
// the API runs without a broker in development and tests.
type Producer struct {
	Writer *kafka.Writer
	Logger *slog.Logger
}

func NewProducer(brokers []string, topic string, l *slog.Logger) *Producer {
	if len(brokers) == 0 {
		return nil
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Producer{Writer: w, Logger: l}
}

// Publish emits one event keyed by username. Broker failures are logged
// and swallowed; events never fail an API request.
func (p *Producer) Publish(ctx context.Context, eventType, username string) {
	if p == nil || p.Writer == nil {
		return
	}
	value, err := json.Marshal(map[string]string{
		"type":     eventType,
		"username": username,
	})
	if err != nil {
		p.Logger.Error("event marshal failed", "type", eventType, "error", err)
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.Writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(username),
		Value: value,
	}); err != nil {
		p.Logger.Warn("event publish failed", "type", eventType, "error", err)
	}
}

func (p *Producer) Close() error {
	if p == nil || p.Writer == nil {
		return nil
	}
	return p.Writer.Close()
}
