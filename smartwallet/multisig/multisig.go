// Package multisig is the governing multisig: a fixed, weighted voter set that proposes batches of
// commands, votes on them, and executes the ones that reach the required weight before their
// deadline.
package multisig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	errorsmod "cosmossdk.io/errors"

	"github.com/Terrorbear/anchor-guardian/smartwallet/envelope"
	walleterrors "github.com/Terrorbear/anchor-guardian/smartwallet/errors"
	"github.com/Terrorbear/anchor-guardian/smartwallet/events"
	"github.com/Terrorbear/anchor-guardian/smartwallet/host"
	"github.com/Terrorbear/anchor-guardian/smartwallet/state"
	"github.com/Terrorbear/anchor-guardian/wallet-api/logger"
	walletindicators "github.com/Terrorbear/anchor-guardian/wallet-api/metrics/indicators/wallet"
)

const DefaultListLimit = 30

type Multisig struct {
	kv         state.KVStore
	host       host.Host
	sink       events.Sink
	logger     logger.Logger
	indicators walletindicators.Indicators
	mu         sync.Mutex
}

type Option func(*Multisig)

func WithSink(sink events.Sink) Option {
	return func(m *Multisig) { m.sink = sink }
}

func WithIndicators(indicators walletindicators.Indicators) Option {
	return func(m *Multisig) { m.indicators = indicators }
}

// New returns a multisig whose executed commands are submitted through h, which must act with
// the multisig's own identity.
func New(kv state.KVStore, h host.Host, l logger.Logger, opts ...Option) *Multisig {
	m := &Multisig{
		kv:         kv,
		host:       h,
		sink:       events.Nop{},
		logger:     l,
		indicators: walletindicators.NopIndicators{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init stores the voter set and quorum rules. It fails if they are already set.
func (m *Multisig) Init(ctx context.Context, cfg Config) error {
	exists, err := state.Has(ctx, m.kv, state.PKThreshold)
	if err != nil {
		return err
	}
	if exists {
		return errorsmod.Wrap(walleterrors.ErrInvalidRequest, "multisig already initialized")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	for _, v := range cfg.Voters {
		if err := state.SetJSON(ctx, m.kv, state.PKVoter+v.Addr, v); err != nil {
			return err
		}
	}
	return state.SetJSON(ctx, m.kv, state.PKThreshold, Threshold{
		RequiredWeight:  cfg.RequiredWeight,
		TotalWeight:     cfg.TotalWeight(),
		MaxVotingPeriod: cfg.MaxVotingPeriod,
	})
}

// Propose opens a proposal carrying msgs, each of which must be a well formed envelope. The
// proposer's weight is counted as a yes vote, so a proposer holding the required weight passes
// the proposal immediately.
func (m *Multisig) Propose(ctx context.Context, caller, title, description string, msgs []json.RawMessage, now uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	voter, err := m.voter(ctx, caller)
	if err != nil {
		return 0, err
	}
	if len(msgs) == 0 {
		return 0, errorsmod.Wrap(walleterrors.ErrInvalidRequest, "proposal has no messages")
	}
	for i, msg := range msgs {
		if _, err := envelope.Parse(msg, envelope.DefaultMaxDepth); err != nil {
			return 0, fmt.Errorf("message %d: %w", i, err)
		}
	}
	threshold, err := m.Threshold(ctx)
	if err != nil {
		return 0, err
	}

	id, err := state.NextSequence(ctx, m.kv, state.PKProposalSeq)
	if err != nil {
		return 0, err
	}
	p := Proposal{
		ID:          id,
		Title:       title,
		Description: description,
		Msgs:        msgs,
		Proposer:    caller,
		Status:      StatusOpen,
		CreatedAt:   now,
		ExpiresAt:   now + threshold.MaxVotingPeriod,
	}
	ballot := Ballot{ProposalID: id, Voter: caller, Vote: VoteYes, Weight: voter.Weight}
	p.Tally.add(VoteYes, voter.Weight)
	p.Status = nextStatus(p, threshold)

	if err := state.SetJSON(ctx, m.kv, ballotKey(id, caller), ballot); err != nil {
		return 0, err
	}
	if err := m.save(ctx, p); err != nil {
		return 0, err
	}
	m.logger.Info("proposal created",
		logger.WithField("proposalID", id),
		logger.WithField("proposer", caller),
		logger.WithField("msgs", len(msgs)))
	m.emit(ctx, p, "propose", caller)
	if p.Status != StatusOpen {
		m.indicators.IncProposal(string(p.Status))
	}
	return id, nil
}

// Vote records caller's choice on proposal id, replacing any earlier choice of the same voter.
func (m *Multisig) Vote(ctx context.Context, caller string, id uint64, choice Vote, now uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := ParseVote(string(choice)); err != nil {
		return err
	}
	voter, err := m.voter(ctx, caller)
	if err != nil {
		return err
	}
	p, err := m.load(ctx, id)
	if err != nil {
		return err
	}
	if !p.Open(now) {
		return errorsmod.Wrapf(walleterrors.ErrVotingClosed, "proposal %d is %s at height %d, deadline %d", id, p.Status, now, p.ExpiresAt)
	}
	threshold, err := m.Threshold(ctx)
	if err != nil {
		return err
	}

	var prev Ballot
	err = state.GetJSON(ctx, m.kv, ballotKey(id, caller), &prev)
	switch {
	case err == nil:
		p.Tally.sub(prev.Vote, prev.Weight)
	case !errors.Is(err, state.ErrKeyNotFound):
		return err
	}
	p.Tally.add(choice, voter.Weight)
	p.Status = nextStatus(p, threshold)

	if err := state.SetJSON(ctx, m.kv, ballotKey(id, caller), Ballot{ProposalID: id, Voter: caller, Vote: choice, Weight: voter.Weight}); err != nil {
		return err
	}
	if err := m.save(ctx, p); err != nil {
		return err
	}
	m.emit(ctx, p, "vote", caller, events.Attribute{Key: "vote", Value: string(choice)})
	if p.Status != StatusOpen {
		m.indicators.IncProposal(string(p.Status))
	}
	return nil
}

// Close marks an open proposal whose deadline has passed as expired.
func (m *Multisig) Close(ctx context.Context, caller string, id uint64, now uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.load(ctx, id)
	if err != nil {
		return err
	}
	if p.Status != StatusOpen {
		return errorsmod.Wrapf(walleterrors.ErrVotingClosed, "proposal %d is %s", id, p.Status)
	}
	if now < p.ExpiresAt {
		return errorsmod.Wrapf(walleterrors.ErrNotExpired, "proposal %d is open until %d", id, p.ExpiresAt)
	}
	p.Status = StatusExpired
	if err := m.save(ctx, p); err != nil {
		return err
	}
	m.emit(ctx, p, "close", caller)
	m.indicators.IncProposal(string(p.Status))
	return nil
}

// Execute submits the commands of a passed proposal in order. The first failure stops the batch;
// earlier commands are not undone. Either way the proposal ends Executed with a report, and a
// failure is returned as a *BatchError.
func (m *Multisig) Execute(ctx context.Context, caller string, id uint64, now uint64) (*ExecutionReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	switch p.Status {
	case StatusPassed:
	case StatusExecuted:
		return nil, errorsmod.Wrapf(walleterrors.ErrAlreadyExecuted, "proposal %d", id)
	default:
		return nil, errorsmod.Wrapf(walleterrors.ErrNotPassed, "proposal %d is %s", id, p.Status)
	}

	report := &ExecutionReport{FailedIndex: -1, Height: int64(now)}
	var batchErr error
	for i, raw := range p.Msgs {
		report.Attempted++
		env, err := envelope.Decode(raw)
		if err == nil {
			var tx *host.TxResult
			tx, err = m.host.Submit(ctx, env.Target, env.Payload, env.Funds)
			if err == nil {
				report.Succeeded++
				if tx != nil && tx.TxHash != "" {
					report.TxHashes = append(report.TxHashes, tx.TxHash)
				}
				continue
			}
			err = walleterrors.Downstream(env.Target, err)
		}
		report.FailedIndex = i
		report.Error = err.Error()
		batchErr = &BatchError{ProposalID: id, Index: i, Err: err}
		break
	}

	p.Status = StatusExecuted
	p.Execution = report
	if err := m.save(ctx, p); err != nil {
		return report, err
	}
	attrs := []events.Attribute{
		{Key: "attempted", Value: strconv.Itoa(report.Attempted)},
		{Key: "succeeded", Value: strconv.Itoa(report.Succeeded)},
	}
	if batchErr != nil {
		attrs = append(attrs, events.Attribute{Key: "failed_index", Value: strconv.Itoa(report.FailedIndex)})
		m.logger.Warn("proposal batch stopped",
			logger.WithField("proposalID", id),
			logger.WithField("index", report.FailedIndex),
			logger.WithField("err", report.Error))
	}
	m.emit(ctx, p, "execute", caller, attrs...)
	m.indicators.IncProposal(string(p.Status))
	return report, batchErr
}

// Proposal returns proposal id with its status as seen at height now.
func (m *Multisig) Proposal(ctx context.Context, id uint64, now uint64) (Proposal, error) {
	p, err := m.load(ctx, id)
	if err != nil {
		return Proposal{}, err
	}
	p.Status = p.CurrentStatus(now)
	return p, nil
}

func (m *Multisig) load(ctx context.Context, id uint64) (Proposal, error) {
	var p Proposal
	err := state.GetJSON(ctx, m.kv, proposalKey(id), &p)
	if errors.Is(err, state.ErrKeyNotFound) {
		return Proposal{}, errorsmod.Wrapf(walleterrors.ErrNotFound, "proposal %d", id)
	}
	return p, err
}

// Proposals lists proposals in id order after startAfter, at most limit of them, with statuses as
// seen at height now.
func (m *Multisig) Proposals(ctx context.Context, startAfter uint64, limit int, now uint64) ([]Proposal, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	keys, err := m.kv.Keys(ctx, state.PKProposal)
	if err != nil {
		return nil, err
	}
	out := make([]Proposal, 0, limit)
	for _, key := range keys {
		id, err := strconv.ParseUint(strings.TrimPrefix(key, state.PKProposal), 10, 64)
		if err != nil || id <= startAfter {
			continue
		}
		p, err := m.Proposal(ctx, id, now)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Votes lists the ballots cast on proposal id, ordered by voter.
func (m *Multisig) Votes(ctx context.Context, id uint64) ([]Ballot, error) {
	if _, err := m.load(ctx, id); err != nil {
		return nil, err
	}
	prefix := ballotKey(id, "")
	keys, err := m.kv.Keys(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]Ballot, 0, len(keys))
	for _, key := range keys {
		var b Ballot
		if err := state.GetJSON(ctx, m.kv, key, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *Multisig) Voters(ctx context.Context) ([]Voter, error) {
	keys, err := m.kv.Keys(ctx, state.PKVoter)
	if err != nil {
		return nil, err
	}
	out := make([]Voter, 0, len(keys))
	for _, key := range keys {
		var v Voter
		if err := state.GetJSON(ctx, m.kv, key, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (m *Multisig) Threshold(ctx context.Context) (Threshold, error) {
	var t Threshold
	err := state.GetJSON(ctx, m.kv, state.PKThreshold, &t)
	if errors.Is(err, state.ErrKeyNotFound) {
		return Threshold{}, errorsmod.Wrap(walleterrors.ErrNotFound, "multisig is not initialized")
	}
	return t, err
}

// voter returns caller's membership or ErrUnauthorized.
func (m *Multisig) voter(ctx context.Context, caller string) (Voter, error) {
	var v Voter
	err := state.GetJSON(ctx, m.kv, state.PKVoter+caller, &v)
	if errors.Is(err, state.ErrKeyNotFound) || (err == nil && v.Weight == 0) {
		return Voter{}, errorsmod.Wrapf(walleterrors.ErrUnauthorized, "%s is not a voter", caller)
	}
	return v, err
}

func (m *Multisig) save(ctx context.Context, p Proposal) error {
	return state.SetJSON(ctx, m.kv, proposalKey(p.ID), p)
}

func (m *Multisig) emit(ctx context.Context, p Proposal, action, caller string, attrs ...events.Attribute) {
	event := events.New(events.TypeProposal, action, caller, events.HeightFrom(ctx)).
		With("proposal_id", strconv.FormatUint(p.ID, 10)).
		With("status", string(p.Status))
	for _, a := range attrs {
		event = event.With(a.Key, a.Value)
	}
	if err := m.sink.Emit(ctx, event); err != nil {
		m.logger.Error("failed to emit proposal event", logger.WithField("action", action), logger.WithField("err", err))
	}
}

// nextStatus applies the quorum rule to an open proposal.
func nextStatus(p Proposal, t Threshold) Status {
	if p.Status != StatusOpen {
		return p.Status
	}
	switch {
	case p.Tally.Yes >= t.RequiredWeight:
		return StatusPassed
	case p.Tally.No >= t.RequiredWeight:
		return StatusRejected
	}
	return StatusOpen
}

// proposalKey zero pads the id so that key order is id order.
func proposalKey(id uint64) string {
	return fmt.Sprintf("%s%020d", state.PKProposal, id)
}

func ballotKey(id uint64, voter string) string {
	return fmt.Sprintf("%s%020d:%s", state.PKBallot, id, voter)
}
