package localterra

import (
	"context"
	"errors"
	"strconv"

	errorsmod "cosmossdk.io/errors"

	walleterrors "github.com/Terrorbear/anchor-guardian/smartwallet/errors"
	"github.com/Terrorbear/anchor-guardian/smartwallet/events"
	"github.com/Terrorbear/anchor-guardian/smartwallet/multisig"
	"github.com/Terrorbear/anchor-guardian/wallet-api/logger"
	walletindicators "github.com/Terrorbear/anchor-guardian/wallet-api/metrics/indicators/wallet"
	cwmultisig "github.com/Terrorbear/anchor-guardian/wallet-cw/multisig"
)

type multisigContract struct {
	logger     logger.Logger
	sink       events.Sink
	indicators walletindicators.Indicators
}

// MultisigCode deploys the governing multisig with the cw3 message set.
func MultisigCode(l logger.Logger, sink events.Sink, indicators walletindicators.Indicators) Factory {
	if indicators == nil {
		indicators = walletindicators.NopIndicators{}
	}
	return func() Contract {
		return &multisigContract{logger: l, sink: sink, indicators: indicators}
	}
}

func (c *multisigContract) open(env Env) (*multisig.Multisig, *events.Recorder) {
	rec := events.NewRecorder()
	var sink events.Sink = rec
	if c.sink != nil {
		sink = events.Fanout{rec, c.sink}
	}
	return multisig.New(env.Store, env.Host, c.logger,
		multisig.WithSink(sink),
		multisig.WithIndicators(c.indicators)), rec
}

func (c *multisigContract) Instantiate(ctx context.Context, env Env, msg []byte) (*Response, error) {
	instMsg, err := cwmultisig.UnmarshalInstantiateMsg(msg)
	if err != nil {
		return nil, errorsmod.Wrap(walleterrors.ErrInvalidRequest, err.Error())
	}
	if instMsg.MaxVotingPeriod.Height == nil || *instMsg.MaxVotingPeriod.Height <= 0 {
		return nil, errorsmod.Wrap(walleterrors.ErrInvalidRequest, "max_voting_period must be a positive block height")
	}
	if instMsg.RequiredWeight <= 0 {
		return nil, errorsmod.Wrap(walleterrors.ErrInvalidRequest, "required_weight must be positive")
	}
	cfg := multisig.Config{
		RequiredWeight:  uint64(instMsg.RequiredWeight),
		MaxVotingPeriod: uint64(*instMsg.MaxVotingPeriod.Height),
	}
	for _, v := range instMsg.Voters {
		if v.Weight <= 0 {
			return nil, errorsmod.Wrapf(walleterrors.ErrInvalidRequest, "voter %s has weight %d", v.Addr, v.Weight)
		}
		cfg.Voters = append(cfg.Voters, multisig.Voter{Addr: v.Addr, Weight: uint64(v.Weight)})
	}
	m, _ := c.open(env)
	if err := m.Init(ctx, cfg); err != nil {
		return nil, err
	}
	return &Response{Attributes: eventAttrs("action", "instantiate", "voters", strconv.Itoa(len(cfg.Voters)))}, nil
}

func (c *multisigContract) Execute(ctx context.Context, env Env, raw []byte) (*Response, error) {
	msg, err := cwmultisig.UnmarshalExecuteMsg(raw)
	if err != nil {
		return nil, errorsmod.Wrap(walleterrors.ErrInvalidRequest, err.Error())
	}
	m, rec := c.open(env)
	ctx = events.WithHeight(ctx, env.Height)
	now := uint64(env.Height)

	switch {
	case msg.Propose != nil:
		id, err := m.Propose(ctx, env.Sender, msg.Propose.Title, msg.Propose.Description, msg.Propose.Msgs, now)
		if err != nil {
			return nil, err
		}
		return c.respond(ctx, m, rec, "propose", env.Sender, id, now)
	case msg.Vote != nil:
		id, err := proposalID(msg.Vote.ProposalID)
		if err != nil {
			return nil, err
		}
		vote, err := multisig.ParseVote(msg.Vote.Vote)
		if err != nil {
			return nil, err
		}
		if err := m.Vote(ctx, env.Sender, id, vote, now); err != nil {
			return nil, err
		}
		return c.respond(ctx, m, rec, "vote", env.Sender, id, now)
	case msg.Execute != nil:
		id, err := proposalID(msg.Execute.ProposalID)
		if err != nil {
			return nil, err
		}
		report, err := m.Execute(ctx, env.Sender, id, now)
		var batch *multisig.BatchError
		if err != nil && !errors.As(err, &batch) {
			return nil, err
		}
		resp, rerr := c.respond(ctx, m, rec, "execute", env.Sender, id, now)
		if rerr != nil {
			return nil, rerr
		}
		resp.AddAttribute("succeeded", strconv.Itoa(report.Succeeded))
		// the commands before the failed one stay applied
		return resp, err
	case msg.Close != nil:
		id, err := proposalID(msg.Close.ProposalID)
		if err != nil {
			return nil, err
		}
		if err := m.Close(ctx, env.Sender, id, now); err != nil {
			return nil, err
		}
		return c.respond(ctx, m, rec, "close", env.Sender, id, now)
	}
	return nil, errorsmod.Wrap(walleterrors.ErrInvalidRequest, "unknown execute message")
}

func (c *multisigContract) respond(ctx context.Context, m *multisig.Multisig, rec *events.Recorder, action, sender string, id, now uint64) (*Response, error) {
	p, err := m.Proposal(ctx, id, now)
	if err != nil {
		return nil, err
	}
	resp := recorded(rec)
	resp.Attributes = append(resp.Attributes, eventAttrs(
		"action", action,
		"sender", sender,
		"proposal_id", strconv.FormatUint(id, 10),
		"status", string(p.Status),
	)...)
	return resp, nil
}

func (c *multisigContract) Query(ctx context.Context, env Env, raw []byte) ([]byte, error) {
	msg, err := cwmultisig.UnmarshalQueryMsg(raw)
	if err != nil {
		return nil, errorsmod.Wrap(walleterrors.ErrInvalidRequest, err.Error())
	}
	m, _ := c.open(env)

	switch {
	case msg.Threshold != nil:
		t, err := m.Threshold(ctx)
		if err != nil {
			return nil, err
		}
		resp := thresholdResponse(t)
		return resp.Marshal()
	case msg.Proposal != nil:
		id, err := proposalID(msg.Proposal.ProposalID)
		if err != nil {
			return nil, err
		}
		t, p, err := proposalWithThreshold(ctx, m, id, uint64(env.Height))
		if err != nil {
			return nil, err
		}
		resp := proposalResponse(p, t)
		return resp.Marshal()
	case msg.ListProposals != nil:
		var startAfter uint64
		if msg.ListProposals.StartAfter != nil && *msg.ListProposals.StartAfter > 0 {
			startAfter = uint64(*msg.ListProposals.StartAfter)
		}
		limit := 0
		if msg.ListProposals.Limit != nil {
			limit = int(*msg.ListProposals.Limit)
		}
		t, err := m.Threshold(ctx)
		if err != nil {
			return nil, err
		}
		ps, err := m.Proposals(ctx, startAfter, limit, uint64(env.Height))
		if err != nil {
			return nil, err
		}
		resp := cwmultisig.ProposalListResponse{Proposals: make([]cwmultisig.ProposalResponse, 0, len(ps))}
		for _, p := range ps {
			resp.Proposals = append(resp.Proposals, proposalResponse(p, t))
		}
		return resp.Marshal()
	case msg.Vote != nil:
		id, err := proposalID(msg.Vote.ProposalID)
		if err != nil {
			return nil, err
		}
		ballots, err := m.Votes(ctx, id)
		if err != nil {
			return nil, err
		}
		resp := cwmultisig.VoteListResponse{Votes: []cwmultisig.VoteInfo{}}
		for _, b := range ballots {
			if b.Voter == msg.Vote.Voter {
				resp.Votes = append(resp.Votes, voteInfo(b))
			}
		}
		return resp.Marshal()
	case msg.ListVotes != nil:
		id, err := proposalID(msg.ListVotes.ProposalID)
		if err != nil {
			return nil, err
		}
		ballots, err := m.Votes(ctx, id)
		if err != nil {
			return nil, err
		}
		resp := cwmultisig.VoteListResponse{Votes: make([]cwmultisig.VoteInfo, 0, len(ballots))}
		for _, b := range ballots {
			resp.Votes = append(resp.Votes, voteInfo(b))
		}
		return resp.Marshal()
	case msg.ListVoters != nil:
		voters, err := m.Voters(ctx)
		if err != nil {
			return nil, err
		}
		resp := cwmultisig.VoterListResponse{Voters: make([]cwmultisig.Voter, 0, len(voters))}
		for _, v := range voters {
			resp.Voters = append(resp.Voters, cwmultisig.Voter{Addr: v.Addr, Weight: int64(v.Weight)})
		}
		return resp.Marshal()
	}
	return nil, errorsmod.Wrap(walleterrors.ErrInvalidRequest, "unknown query message")
}

func proposalID(id int64) (uint64, error) {
	if id <= 0 {
		return 0, errorsmod.Wrapf(walleterrors.ErrInvalidRequest, "invalid proposal id %d", id)
	}
	return uint64(id), nil
}

func proposalWithThreshold(ctx context.Context, m *multisig.Multisig, id, now uint64) (multisig.Threshold, multisig.Proposal, error) {
	t, err := m.Threshold(ctx)
	if err != nil {
		return multisig.Threshold{}, multisig.Proposal{}, err
	}
	p, err := m.Proposal(ctx, id, now)
	return t, p, err
}

func thresholdResponse(t multisig.Threshold) cwmultisig.ThresholdResponse {
	return cwmultisig.ThresholdResponse{AbsoluteCount: cwmultisig.AbsoluteCount{
		TotalWeight: int64(t.TotalWeight),
		Weight:      int64(t.RequiredWeight),
	}}
}

func proposalResponse(p multisig.Proposal, t multisig.Threshold) cwmultisig.ProposalResponse {
	expires := int64(p.ExpiresAt)
	resp := cwmultisig.ProposalResponse{
		Description: p.Description,
		Expires:     cwmultisig.Expiration{AtHeight: &expires},
		ID:          int64(p.ID),
		Msgs:        p.Msgs,
		Proposer:    p.Proposer,
		Status:      cwmultisig.Status(p.Status),
		Threshold:   thresholdResponse(t),
		Title:       p.Title,
	}
	if p.Execution != nil {
		report := &cwmultisig.ExecutionReport{
			Attempted:   int64(p.Execution.Attempted),
			FailedIndex: int64(p.Execution.FailedIndex),
			Succeeded:   int64(p.Execution.Succeeded),
		}
		if p.Execution.Error != "" {
			msg := p.Execution.Error
			report.Error = &msg
		}
		resp.Execution = report
	}
	return resp
}

func voteInfo(b multisig.Ballot) cwmultisig.VoteInfo {
	return cwmultisig.VoteInfo{Vote: string(b.Vote), Voter: b.Voter, Weight: int64(b.Weight)}
}
