package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"booking-warden/internal/logger"
	"booking-warden/internal/models"

	"github.com/segmentio/kafka-go"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Consumer struct {
	reader MessageReader
	logger *logger.Logger
}

// NewConsumer creates a new Kafka consumer for the given topic and group
func NewConsumer(brokers []string, topic, groupID string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader, logger: log}
}

// Start feeds violation events to handler until ctx is done. Undecodable
// messages are logged and skipped.
func (c *Consumer) Start(ctx context.Context, handler func(models.ViolationEvent)) error {
	c.logger.LogKafka("CONSUME", "", "Consumer started")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("failed to read message: %w", err)
		}

		var ev models.ViolationEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			c.logger.Warn("KAFKA", fmt.Sprintf("Failed to unmarshal message at offset %d: %v", msg.Offset, err))
			continue
		}

		handler(ev)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
