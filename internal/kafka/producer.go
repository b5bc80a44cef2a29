package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"booking-warden/internal/logger"
	"booking-warden/internal/models"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the producer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	Writer MessageWriter
	topic  string
	logger *logger.Logger
}

func NewProducer(brokers []string, topic string, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Producer{Writer: writer, topic: topic, logger: log}
}

// PublishViolations streams one event per offending unit, keyed by unit id so
// a unit's history stays on one partition.
func (p *Producer) PublishViolations(ctx context.Context, events []models.ViolationEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		msgBytes, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to encode violation event for unit %d: %w", ev.UnitID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(strconv.FormatInt(ev.UnitID, 10)),
			Value: msgBytes,
		})
	}

	if err := p.Writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.topic, err)
	}
	p.logger.LogKafka("PUBLISH", p.topic, fmt.Sprintf("Published %d violation events", len(msgs)))
	return nil
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
