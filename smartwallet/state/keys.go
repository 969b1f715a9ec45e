package state

const (
	PKConfig      = "config"
	PKContract    = "contract:"
	PKHotWallet   = "hot_wallet:"
	PKRevision    = "policy_revision"
	PKGuard       = "guard:"
	PKProposal    = "proposal:"
	PKProposalSeq = "proposal_seq"
	PKBallot      = "ballot:"
	PKVoter       = "voter:"
	PKThreshold   = "threshold"
	PKBalance     = "balance:"
	PKTokenInfo   = "token_info"
	PKAllowance   = "allowance:"
	PKCall        = "call:"
	PKCallSeq     = "call_seq"
)
