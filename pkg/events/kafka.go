package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// batchTimeout bounds how long a queued event waits before its batch is flushed
const batchTimeout = 10 * time.Millisecond

// KafkaPublisher writes JSON events to a single topic. Writes are asynchronous:
// PublishEvent only reports encoding errors, delivery errors go to the onError callback.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a publisher with one long-lived writer. onError may be nil.
func NewKafkaPublisher(brokers []string, topic string, onError func(error)) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
			Async:                  true,
			BatchTimeout:           batchTimeout,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil && onError != nil {
					onError(fmt.Errorf("failed to deliver %d event(s): %w", len(messages), err))
				}
			},
		},
	}
}

func (p *KafkaPublisher) PublishEvent(ctx context.Context, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	})
}

// Close flushes queued events and releases the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
