package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"deliwaste/server/internal/models"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Consumer reads waste events from Kafka and passes them to a handler. Every
// server instance should use its own group so each one sees every event.
type Consumer struct {
	reader    *kafka.Reader
	topic     string
	groupID   string
	handler   Handler
	log       *zap.Logger
	processed atomic.Int64

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func NewConsumer(brokers []string, topic, groupID string, dialer *kafka.Dialer, h Handler, log *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     1 * time.Second,
		Dialer:      dialer,
	})
	return &Consumer{
		reader:  reader,
		topic:   topic,
		groupID: groupID,
		handler: h,
		log:     log,
		done:    make(chan struct{}),
	}
}

// Start runs the read loop in a goroutine until Stop is called.
func (c *Consumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.log.Info("kafka consumer started", zap.String("topic", c.topic), zap.String("group", c.groupID))

	go func() {
		defer close(c.done)
		for {
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, context.Canceled) {
					return
				}
				c.log.Warn("kafka read failed", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
				continue
			}
			c.handleMessage(ctx, msg)
		}
	}()
}

// handleMessage decodes one message. Undecodable or foreign messages are skipped.
func (c *Consumer) handleMessage(ctx context.Context, msg kafka.Message) bool {
	var event models.WasteEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.log.Debug("skipping undecodable message", zap.Int64("offset", msg.Offset), zap.Error(err))
		return false
	}
	if event.Type != models.EventWasteLogged {
		return false
	}

	c.handler(ctx, event)
	if n := c.processed.Add(1); n%100 == 0 {
		c.log.Info("kafka consumer progress", zap.Int64("processed", n))
	}
	return true
}

// Stop cancels the loop, waits for it, and closes the reader.
func (c *Consumer) Stop() error {
	var err error
	c.once.Do(func() {
		if c.cancel != nil {
			c.cancel()
			<-c.done
		}
		err = c.reader.Close()
		c.log.Info("kafka consumer stopped", zap.Int64("processed", c.processed.Load()))
	})
	return err
}
