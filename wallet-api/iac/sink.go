package iac

import (
	"context"
	"encoding/json"

	"github.com/Terrorbear/anchor-guardian/smartwallet/events"
)

// EventSink publishes audit events, keyed by wallet so one wallet's events stay ordered within
// a partition.
type EventSink struct {
	publisher Publisher
	wallet    string
}

var _ events.Sink = (*EventSink)(nil)

func NewEventSink(publisher Publisher, wallet string) *EventSink {
	return &EventSink{publisher: publisher, wallet: wallet}
}

func (s *EventSink) Emit(ctx context.Context, event events.Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	key := s.wallet
	if key == "" {
		key = event.Caller
	}
	return s.publisher.Publish(ctx, Msg{PartitionKey: key, Message: string(raw)})
}
