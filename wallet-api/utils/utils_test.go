package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, nil))
	assert.Nil(t, WrapError("", nil))

	sub := errors.New("connection refused")
	assert.Equal(t, sub, WrapError(nil, sub))

	err := WrapError("metrics server failed", sub)
	assert.EqualError(t, err, "metrics server failed: connection refused")

	err = WrapError(ErrEmptyAddress, "owner")
	assert.ErrorIs(t, err, ErrEmptyAddress)
}

func TestUtilisation(t *testing.T) {
	u, err := Utilisation("40", "1000", 4)
	assert.NoError(t, err)
	assert.Equal(t, "0.04", u.String())

	u, err = Utilisation("5", "0", 4)
	assert.NoError(t, err)
	assert.True(t, u.IsZero())

	_, err = Utilisation("abc", "10", 4)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	r, err := Remaining("1200", "1000")
	assert.NoError(t, err)
	assert.Equal(t, "0", r.String())
	r, err = Remaining("100000000", "340282366920938463463374607431768211455")
	assert.NoError(t, err)
	assert.Equal(t, "340282366920938463463374607431668211455", r.String())
}
