package multisig

import (
	"encoding/json"
	"fmt"

	errorsmod "cosmossdk.io/errors"

	walleterrors "github.com/Terrorbear/anchor-guardian/smartwallet/errors"
)

type Vote string

const (
	VoteYes     Vote = "yes"
	VoteNo      Vote = "no"
	VoteAbstain Vote = "abstain"
)

func ParseVote(s string) (Vote, error) {
	switch v := Vote(s); v {
	case VoteYes, VoteNo, VoteAbstain:
		return v, nil
	}
	return "", errorsmod.Wrapf(walleterrors.ErrInvalidRequest, "unknown vote %q", s)
}

type Status string

const (
	StatusOpen     Status = "open"
	StatusPassed   Status = "passed"
	StatusRejected Status = "rejected"
	StatusExecuted Status = "executed"
	StatusExpired  Status = "expired"
)

type Voter struct {
	Addr   string `json:"addr"`
	Weight uint64 `json:"weight"`
}

// Config is the fixed voter set and quorum rules. Heights are block heights.
type Config struct {
	Voters          []Voter `json:"voters"`
	RequiredWeight  uint64  `json:"required_weight"`
	MaxVotingPeriod uint64  `json:"max_voting_period"`
}

func (c Config) TotalWeight() uint64 {
	var total uint64
	for _, v := range c.Voters {
		total += v.Weight
	}
	return total
}

func (c Config) Validate() error {
	if len(c.Voters) == 0 {
		return errorsmod.Wrap(walleterrors.ErrInvalidRequest, "no voters")
	}
	seen := make(map[string]struct{}, len(c.Voters))
	for _, v := range c.Voters {
		if v.Addr == "" {
			return errorsmod.Wrap(walleterrors.ErrInvalidRequest, "voter address is required")
		}
		if v.Weight == 0 {
			return errorsmod.Wrapf(walleterrors.ErrInvalidRequest, "voter %s has zero weight", v.Addr)
		}
		if _, ok := seen[v.Addr]; ok {
			return errorsmod.Wrapf(walleterrors.ErrInvalidRequest, "duplicate voter %s", v.Addr)
		}
		seen[v.Addr] = struct{}{}
	}
	if c.RequiredWeight == 0 || c.RequiredWeight > c.TotalWeight() {
		return errorsmod.Wrapf(walleterrors.ErrInvalidRequest, "required weight %d is unreachable with total %d", c.RequiredWeight, c.TotalWeight())
	}
	if c.MaxVotingPeriod == 0 {
		return errorsmod.Wrap(walleterrors.ErrInvalidRequest, "max voting period must be positive")
	}
	return nil
}

// Threshold is what the threshold query returns.
type Threshold struct {
	RequiredWeight  uint64 `json:"required_weight"`
	TotalWeight     uint64 `json:"total_weight"`
	MaxVotingPeriod uint64 `json:"max_voting_period"`
}

type Ballot struct {
	ProposalID uint64 `json:"proposal_id"`
	Voter      string `json:"voter"`
	Vote       Vote   `json:"vote"`
	Weight     uint64 `json:"weight"`
}

type Tally struct {
	Yes     uint64 `json:"yes"`
	No      uint64 `json:"no"`
	Abstain uint64 `json:"abstain"`
}

func (t *Tally) add(v Vote, weight uint64) {
	switch v {
	case VoteYes:
		t.Yes += weight
	case VoteNo:
		t.No += weight
	case VoteAbstain:
		t.Abstain += weight
	}
}

func (t *Tally) sub(v Vote, weight uint64) {
	dec := func(n *uint64) {
		if *n > weight {
			*n -= weight
		} else {
			*n = 0
		}
	}
	switch v {
	case VoteYes:
		dec(&t.Yes)
	case VoteNo:
		dec(&t.No)
	case VoteAbstain:
		dec(&t.Abstain)
	}
}

// ExecutionReport records how far a batch got. FailedIndex is -1 when every command succeeded.
type ExecutionReport struct {
	Attempted   int      `json:"attempted"`
	Succeeded   int      `json:"succeeded"`
	FailedIndex int      `json:"failed_index"`
	Error       string   `json:"error,omitempty"`
	Height      int64    `json:"height"`
	TxHashes    []string `json:"tx_hashes,omitempty"`
}

func (r ExecutionReport) Complete() bool {
	return r.FailedIndex < 0
}

type Proposal struct {
	ID          uint64            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Msgs        []json.RawMessage `json:"msgs"`
	Proposer    string            `json:"proposer"`
	Tally       Tally             `json:"tally"`
	Status      Status            `json:"status"`
	CreatedAt   uint64            `json:"created_at"`
	ExpiresAt   uint64            `json:"expires_at"`
	Execution   *ExecutionReport  `json:"execution,omitempty"`
}

// Open reports whether votes are still accepted at height now.
func (p Proposal) Open(now uint64) bool {
	return p.Status == StatusOpen && now < p.ExpiresAt
}

// CurrentStatus is the status as seen at height now. An open proposal past its deadline reads as
// expired even before Close stores it.
func (p Proposal) CurrentStatus(now uint64) Status {
	if p.Status == StatusOpen && now >= p.ExpiresAt {
		return StatusExpired
	}
	return p.Status
}

// BatchError is returned by Execute when a command of the batch failed. Commands before Index
// were applied and stay applied.
type BatchError struct {
	ProposalID uint64
	Index      int
	Err        error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("proposal %d: command %d: %v", e.ProposalID, e.Index, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }
