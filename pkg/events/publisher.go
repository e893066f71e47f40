package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/noah-isme/edu-docflow-api/internal/models"
)

// Publisher delivers document change notifications to an external bus.
type Publisher interface {
	Publish(ctx context.Context, event models.DocumentUpdatedEvent) error
	Close() error
}

// ChannelPublisher is the narrow pub/sub surface the Redis publisher rides
// on. The repository layer's cache repository satisfies it.
type ChannelPublisher interface {
	Publish(ctx context.Context, channel string, value interface{}) error
}

// RedisPublisher fans events out on a Redis pub/sub channel.
type RedisPublisher struct {
	pub     ChannelPublisher
	channel string
}

// NewRedisPublisher constructs a Redis-backed publisher.
func NewRedisPublisher(pub ChannelPublisher, channel string) *RedisPublisher {
	if channel == "" {
		channel = "docflow:updates"
	}
	return &RedisPublisher{pub: pub, channel: channel}
}

// Publish implements Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, event models.DocumentUpdatedEvent) error {
	if p.pub == nil {
		return nil
	}
	return p.pub.Publish(ctx, p.channel, event)
}

// Close implements Publisher. The underlying connection is owned elsewhere.
func (p *RedisPublisher) Close() error { return nil }

// KafkaPublisher writes events to a Kafka topic keyed by education id so a
// single education's updates stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher constructs a Kafka-backed publisher.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaPublisher{writer: writer}
}

// Publish implements Publisher.
func (p *KafkaPublisher) Publish(ctx context.Context, event models.DocumentUpdatedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal document event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.EducationID),
		Value: payload,
	})
}

// Close flushes and closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops events. Used when no event bus is configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, models.DocumentUpdatedEvent) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }
