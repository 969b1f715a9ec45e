package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failingSink struct{}

func (failingSink) Emit(context.Context, Event) error { return errors.New("broker down") }

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	r := NewRecorder()

	base := New(TypePolicy, "upsert_hot", "terra1owner", 7)
	e := base.With("address", "terra1hot")
	assert.Empty(t, base.Attributes)

	assert.NoError(t, r.Emit(ctx, e))
	assert.NoError(t, r.Emit(ctx, New(TypeDispatch, "forward", "terra1owner", 7)))

	assert.Len(t, r.Events(), 2)
	policy := r.Filter(TypePolicy, "upsert_hot")
	assert.Len(t, policy, 1)
	assert.Equal(t, "terra1hot", policy[0].Get("address"))
	assert.Equal(t, "", policy[0].Get("missing"))

	r.Reset()
	assert.Empty(t, r.Events())
}

func TestABCI(t *testing.T) {
	e := New(TypeProposal, "vote", "terra1voter", 12).With("proposal_id", "1")
	ev := e.ABCI()
	assert.Equal(t, TypeProposal, ev.Type)
	assert.Equal(t, "action", ev.Attributes[0].Key)
	assert.Equal(t, "vote", ev.Attributes[0].Value)
	assert.Equal(t, "proposal_id", ev.Attributes[2].Key)
}

func TestFanout(t *testing.T) {
	r := NewRecorder()
	err := Fanout{failingSink{}, r, Nop{}}.Emit(context.Background(), New(TypeGuard, "charge", "terra1hot", 1))
	assert.EqualError(t, err, "broker down")
	assert.Len(t, r.Events(), 1)
}
