package walleterrors

import (
	"errors"
	"fmt"
	"testing"

	errorsmod "cosmossdk.io/errors"
	"github.com/stretchr/testify/assert"
)

func TestDownstreamError(t *testing.T) {
	cause := errors.New("insufficient collateral")
	err := Downstream("terra1overseer", cause)

	assert.ErrorIs(t, err, ErrDownstreamFailure)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrBudgetExceeded)
	assert.Contains(t, err.Error(), "terra1overseer")
	assert.Nil(t, Downstream("terra1overseer", nil))

	var de *DownstreamError
	assert.True(t, errors.As(fmt.Errorf("batch: %w", err), &de))
	assert.Equal(t, cause, de.Err)
}

func TestReason(t *testing.T) {
	assert.Equal(t, "ok", Reason(nil))
	assert.Equal(t, "cooldown_active", Reason(errorsmod.Wrap(ErrCooldownActive, "retry at 2000")))
	assert.Equal(t, "budget_exceeded", Reason(fmt.Errorf("guard: %w", ErrBudgetExceeded)))
	assert.Equal(t, "downstream_failure", Reason(Downstream("x", errors.New("boom"))))
	assert.Equal(t, "downstream_failure", Reason(Downstream("terra1wallet", errorsmod.Wrap(ErrUnauthorized, "nested wallet"))))
	assert.Equal(t, "downstream_failure", Reason(fmt.Errorf("command 0: %w", Downstream("terra1market", ErrBudgetExceeded))))
	assert.Equal(t, "internal", Reason(errors.New("boom")))
}

func TestErrorsAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, r := range reasons {
		assert.False(t, seen[r.label], r.label)
		seen[r.label] = true
		for _, other := range reasons {
			if other.err != r.err {
				assert.NotErrorIs(t, r.err, other.err)
			}
		}
	}
}
