package iac

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Terrorbear/anchor-guardian/smartwallet/events"
	"github.com/Terrorbear/anchor-guardian/wallet-api/logger"
)

type fakeWriter struct {
	written []kafka.Message
	closed  bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.written = append(f.written, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

type fakeReader struct {
	msgs   []kafka.Message
	cancel context.CancelFunc
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(f.msgs) == 0 {
		f.cancel()
		return kafka.Message{}, context.Canceled
	}
	msg := f.msgs[0]
	f.msgs = f.msgs[1:]
	return msg, nil
}

func (f *fakeReader) Close() error { return nil }

func TestEventSinkPublishes(t *testing.T) {
	w := &fakeWriter{}
	fixed := time.Unix(1700000000, 0)
	sink := NewEventSink(&kafkaPublisher{writer: w, now: func() time.Time { return fixed }}, "terra1wallet")

	event := events.New(events.TypeDispatch, "forward", "terra1farmer", 12).With("target", "terra1market")
	require.NoError(t, sink.Emit(context.Background(), event))

	require.Len(t, w.written, 1)
	assert.Equal(t, "terra1wallet", string(w.written[0].Key))
	assert.Equal(t, fixed, w.written[0].Time)
	var got events.Event
	require.NoError(t, json.Unmarshal(w.written[0].Value, &got))
	assert.Equal(t, event, got)
}

func TestEventSinkKeysByCallerWithoutWallet(t *testing.T) {
	w := &fakeWriter{}
	sink := NewEventSink(&kafkaPublisher{writer: w, now: time.Now}, "")
	require.NoError(t, sink.Emit(context.Background(), events.New(events.TypePolicy, "upsert_hot", "terra1owner", 1)))
	assert.Equal(t, "terra1owner", string(w.written[0].Key))
}

func TestSubscriberDecodesEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	event := events.New(events.TypeProposal, "vote", "terra1voter", 7).With("proposal_id", "1")
	raw, err := json.Marshal(event)
	require.NoError(t, err)
	reader := &fakeReader{cancel: cancel, msgs: []kafka.Message{{Value: []byte("not json")}, {Value: raw}}}
	log := logger.NewMockLogger()
	sub := &kafkaSubscriber{reader: reader, logger: log}

	var got []events.Event
	require.NoError(t, sub.Subscribe(ctx, func(e events.Event) { got = append(got, e) }))
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].Get("proposal_id"))
}

func TestEventSinkSurfacesPublishErrors(t *testing.T) {
	sink := NewEventSink(failingPublisher{}, "terra1wallet")
	assert.Error(t, sink.Emit(context.Background(), events.New(events.TypeGuard, "charge", "terra1farmer", 1)))
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, ...Msg) error { return errors.New("broker down") }
func (failingPublisher) Close() error                          { return nil }
