package multisig

import (
	"context"

	"github.com/Terrorbear/anchor-guardian/wallet-cli/commands/base"
	cwmultisig "github.com/Terrorbear/anchor-guardian/wallet-cw/multisig"
)

func Proposal(proposalID int64) {
	s := NewService()
	out, err := cwmultisig.UnmarshalProposalResponse(s.query(context.Background(), cwmultisig.QueryMsg{Proposal: &cwmultisig.ProposalIDMsg{ProposalID: proposalID}}))
	if err != nil {
		panic(err)
	}
	base.PrintJSON(out)
}

// Proposals lists proposals after startAfter. Zero values leave the bound to the contract.
func Proposals(startAfter, limit int64) {
	list := &cwmultisig.ListProposals{}
	if startAfter > 0 {
		list.StartAfter = &startAfter
	}
	if limit > 0 {
		list.Limit = &limit
	}
	s := NewService()
	out, err := cwmultisig.UnmarshalProposalListResponse(s.query(context.Background(), cwmultisig.QueryMsg{ListProposals: list}))
	if err != nil {
		panic(err)
	}
	base.PrintJSON(out.Proposals)
}

func Votes(proposalID int64) {
	s := NewService()
	out, err := cwmultisig.UnmarshalVoteListResponse(s.query(context.Background(), cwmultisig.QueryMsg{ListVotes: &cwmultisig.ListVotes{ProposalID: proposalID}}))
	if err != nil {
		panic(err)
	}
	base.PrintJSON(out.Votes)
}

func Voters() {
	s := NewService()
	out, err := cwmultisig.UnmarshalVoterListResponse(s.query(context.Background(), cwmultisig.QueryMsg{ListVoters: &cwmultisig.ListVoters{}}))
	if err != nil {
		panic(err)
	}
	base.PrintJSON(out.Voters)
}

func Threshold() {
	s := NewService()
	out, err := cwmultisig.UnmarshalThresholdResponse(s.query(context.Background(), cwmultisig.QueryMsg{Threshold: &cwmultisig.Threshold{}}))
	if err != nil {
		panic(err)
	}
	base.PrintJSON(out)
}
