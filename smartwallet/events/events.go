// Package events carries the audit trail: every policy mutation, dispatch outcome and proposal
// transition becomes an Event attributed to its caller.
package events

import (
	"context"
	"sync"

	abci "github.com/cometbft/cometbft/abci/types"
)

const (
	TypePolicy   = "smartwallet_policy"
	TypeDispatch = "smartwallet_dispatch"
	TypeGuard    = "smartwallet_guard"
	TypeProposal = "smartwallet_proposal"
)

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Event struct {
	Type       string      `json:"type"`
	Action     string      `json:"action"`
	Caller     string      `json:"caller"`
	Height     int64       `json:"height"`
	Attributes []Attribute `json:"attributes,omitempty"`
}

func New(eventType, action, caller string, height int64) Event {
	return Event{Type: eventType, Action: action, Caller: caller, Height: height}
}

// With appends a key/value and returns the event for chaining.
func (e Event) With(key, value string) Event {
	e.Attributes = append(append([]Attribute(nil), e.Attributes...), Attribute{Key: key, Value: value})
	return e
}

func (e Event) Get(key string) string {
	for _, attr := range e.Attributes {
		if attr.Key == key {
			return attr.Value
		}
	}
	return ""
}

// ABCI renders the event the way the ledger reports it in a tx result.
func (e Event) ABCI() abci.Event {
	attrs := make([]abci.EventAttribute, 0, len(e.Attributes)+2)
	attrs = append(attrs,
		abci.EventAttribute{Key: "action", Value: e.Action},
		abci.EventAttribute{Key: "caller", Value: e.Caller},
	)
	for _, attr := range e.Attributes {
		attrs = append(attrs, abci.EventAttribute{Key: attr.Key, Value: attr.Value})
	}
	return abci.Event{Type: e.Type, Attributes: attrs}
}

type Sink interface {
	Emit(ctx context.Context, event Event) error
}

type Nop struct{}

func (Nop) Emit(context.Context, Event) error { return nil }

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

var _ Sink = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Emit(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Filter returns the recorded events of eventType with the given action; empty action matches all.
func (r *Recorder) Filter(eventType, action string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == eventType && (action == "" || e.Action == action) {
			out = append(out, e)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Fanout emits to every sink and returns the first error.
type Fanout []Sink

func (f Fanout) Emit(ctx context.Context, event Event) error {
	var first error
	for _, sink := range f {
		if err := sink.Emit(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type heightKey struct{}

// WithHeight attaches the block height of the transaction being processed to ctx.
func WithHeight(ctx context.Context, height int64) context.Context {
	return context.WithValue(ctx, heightKey{}, height)
}

func HeightFrom(ctx context.Context) int64 {
	h, _ := ctx.Value(heightKey{}).(int64)
	return h
}
