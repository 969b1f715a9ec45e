// Package walleterrors holds the error taxonomy shared by every smart wallet component.
package walleterrors

import (
	"errors"
	"fmt"

	errorsmod "cosmossdk.io/errors"
)

const Codespace = "smartwallet"

var (
	ErrUnauthorized          = errorsmod.Register(Codespace, 2, "unauthorized")
	ErrUnknownWallet         = errorsmod.Register(Codespace, 3, "unknown hot wallet")
	ErrUnwhitelistedContract = errorsmod.Register(Codespace, 4, "contract is not whitelisted")
	ErrUnwhitelistedMessage  = errorsmod.Register(Codespace, 5, "message kind is not whitelisted")
	ErrCooldownActive        = errorsmod.Register(Codespace, 6, "cooldown active")
	ErrBudgetExceeded        = errorsmod.Register(Codespace, 7, "gas tank budget exceeded")
	ErrMalformedEnvelope     = errorsmod.Register(Codespace, 8, "malformed envelope")
	ErrVotingClosed          = errorsmod.Register(Codespace, 9, "voting closed")
	ErrAlreadyExecuted       = errorsmod.Register(Codespace, 10, "proposal already executed")
	ErrNotFound              = errorsmod.Register(Codespace, 11, "not found")
	ErrDownstreamFailure     = errorsmod.Register(Codespace, 12, "downstream call failed")
	ErrNotPassed             = errorsmod.Register(Codespace, 13, "proposal has not passed")
	ErrNotExpired            = errorsmod.Register(Codespace, 14, "voting period has not elapsed")
	ErrInvalidRequest        = errorsmod.Register(Codespace, 15, "invalid request")
)

// DownstreamError carries the failure of a forwarded call unchanged.
type DownstreamError struct {
	Target string
	Err    error
}

func (e *DownstreamError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrDownstreamFailure.Error(), e.Target, e.Err)
}

func (e *DownstreamError) Unwrap() error { return e.Err }

func (e *DownstreamError) Is(target error) bool {
	return target == ErrDownstreamFailure
}

func Downstream(target string, err error) error {
	if err == nil {
		return nil
	}
	return &DownstreamError{Target: target, Err: err}
}

var reasons = []struct {
	err   error
	label string
}{
	{ErrUnauthorized, "unauthorized"},
	{ErrUnknownWallet, "unknown_wallet"},
	{ErrUnwhitelistedContract, "unwhitelisted_contract"},
	{ErrUnwhitelistedMessage, "unwhitelisted_message"},
	{ErrCooldownActive, "cooldown_active"},
	{ErrBudgetExceeded, "budget_exceeded"},
	{ErrMalformedEnvelope, "malformed_envelope"},
	{ErrVotingClosed, "voting_closed"},
	{ErrAlreadyExecuted, "already_executed"},
	{ErrNotFound, "not_found"},
	{ErrDownstreamFailure, "downstream_failure"},
	{ErrNotPassed, "not_passed"},
	{ErrNotExpired, "not_expired"},
	{ErrInvalidRequest, "invalid_request"},
}

// Reason maps err to a short stable label, used for metrics and events. A failed forwarded call
// is labelled downstream_failure whatever the downstream contract returned.
func Reason(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.Is(err, ErrDownstreamFailure) {
		return "downstream_failure"
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.label
		}
	}
	return "internal"
}
