package iac

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Terrorbear/anchor-guardian/smartwallet/events"
	"github.com/Terrorbear/anchor-guardian/wallet-api/logger"
)

type Subscriber interface {
	// Subscribe blocks, handing every audit event to callback, until ctx is done.
	Subscribe(ctx context.Context, callback func(events.Event)) error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type kafkaSubscriber struct {
	reader messageReader
	logger logger.Logger
}

func NewSubscriber(brokers []string, topic, groupID string, l logger.Logger) Subscriber {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		CommitInterval: 1 * time.Second,
		GroupID:        groupID,
		StartOffset:    kafka.FirstOffset,
	})
	return &kafkaSubscriber{reader: reader, logger: l}
}

func (k *kafkaSubscriber) Subscribe(ctx context.Context, callback func(events.Event)) error {
	defer k.reader.Close()
	for {
		msg, err := k.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			k.logger.Error("read message failed", logger.WithField("err", err))
			continue
		}
		var event events.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			k.logger.Warn("skipping undecodable audit event",
				logger.WithField("offset", msg.Offset),
				logger.WithField("err", err))
			continue
		}
		callback(event)
	}
}
