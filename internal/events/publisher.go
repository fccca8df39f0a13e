package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"deliwaste/server/internal/models"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Handler reacts to one waste event. It must be safe for concurrent use.
type Handler func(ctx context.Context, event models.WasteEvent)

// KafkaPublisher writes waste events to a topic, keyed by item so one item's
// events stay ordered.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, dialer *kafka.Dialer, log *zap.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           10 * time.Second,
		AllowAutoTopicCreation: true,
		Transport:              newTransport(dialer),
	}
	log.Info("kafka publisher ready", zap.Strings("brokers", brokers), zap.String("topic", topic))
	return &KafkaPublisher{writer: w, log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event models.WasteEvent) error {
	msg, err := encode(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s event: %w", event.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func encode(event models.WasteEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	return kafka.Message{
		Key:   []byte(event.ItemID),
		Value: value,
		Time:  event.OccurredAt,
	}, nil
}

// DirectPublisher hands events straight to a handler, for deployments
// without Kafka.
type DirectPublisher struct {
	handler Handler
}

func NewDirectPublisher(h Handler) *DirectPublisher {
	return &DirectPublisher{handler: h}
}

func (p *DirectPublisher) Publish(ctx context.Context, event models.WasteEvent) error {
	if p.handler != nil {
		p.handler(ctx, event)
	}
	return nil
}
