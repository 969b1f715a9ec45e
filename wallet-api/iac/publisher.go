// Package iac moves audit events between processes over Kafka.
package iac

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

type Publisher interface {
	Publish(ctx context.Context, messages ...Msg) error
	Close() error
}

type Msg struct {
	PartitionKey string
	Message      string
}

// messageWriter is the subset of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer messageWriter
	now    func() time.Time
}

// NewPublisher returns a publisher writing to topic. When topic auto creation is on, the first
// write to a missing topic creates it but fails; the writer retries.
func NewPublisher(brokers []string, topic string) Publisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           1 * time.Second,
		RequiredAcks:           kafka.RequireOne,
		MaxAttempts:            3,
		AllowAutoTopicCreation: true,
	}
	return &kafkaPublisher{writer: writer, now: time.Now}
}

func (k *kafkaPublisher) Publish(ctx context.Context, messages ...Msg) error {
	msgs := make([]kafka.Message, 0, len(messages))
	for _, msg := range messages {
		msgs = append(msgs, kafka.Message{
			Key:   []byte(msg.PartitionKey),
			Value: []byte(msg.Message),
			Time:  k.now(),
		})
	}
	return k.writer.WriteMessages(ctx, msgs...)
}

func (k *kafkaPublisher) Close() error {
	return k.writer.Close()
}
