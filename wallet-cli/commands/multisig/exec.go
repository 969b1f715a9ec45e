package multisig

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Terrorbear/anchor-guardian/smartwallet/envelope"
	"github.com/Terrorbear/anchor-guardian/wallet-cli/commands/base"
	cliEnvelope "github.com/Terrorbear/anchor-guardian/wallet-cli/commands/envelope"
	cwmultisig "github.com/Terrorbear/anchor-guardian/wallet-cw/multisig"
	"github.com/Terrorbear/anchor-guardian/wallet-cw/wallet"
)

// Propose submits raw envelopes as one proposal.
func Propose(userKeyName, title, description string, msgs []string) {
	raws := make([]json.RawMessage, 0, len(msgs))
	for _, m := range msgs {
		if _, err := envelope.Decode([]byte(m)); err != nil {
			panic(err)
		}
		raws = append(raws, json.RawMessage(m))
	}
	propose(userKeyName, title, description, raws)
}

// ProposeForward proposes that the wallet forwards payload to target.
func ProposeForward(userKeyName, title, target, payload, funds string) {
	inner, err := cliEnvelope.Encode(target, payload, funds)
	if err != nil {
		panic(err)
	}
	s := newSigningService(userKeyName)
	outer, err := cliEnvelope.Nest(base.Wallet(), string(inner))
	if err != nil {
		panic(err)
	}
	s.propose(title, fmt.Sprintf("forward to %s", target), []json.RawMessage{outer})
}

// ProposeUpsertHot proposes registering or replacing a hot wallet on the wallet.
func ProposeUpsertHot(userKeyName string, hw wallet.HotWallet) {
	msg := wallet.ExecuteMsg{UpsertHot: &wallet.UpsertHot{HotWallet: hw}}
	proposeAdmin(userKeyName, fmt.Sprintf("upsert hot wallet %s", hw.Label), msg)
}

func ProposeRmHot(userKeyName, address string) {
	msg := wallet.ExecuteMsg{RmHot: &wallet.RmHot{Address: address}}
	proposeAdmin(userKeyName, fmt.Sprintf("remove hot wallet %s", address), msg)
}

func ProposeUpsertContract(userKeyName string, contract wallet.WhitelistedContract) {
	msg := wallet.ExecuteMsg{UpsertContract: &wallet.UpsertContract{Contract: contract}}
	proposeAdmin(userKeyName, fmt.Sprintf("whitelist %s", contract.Label), msg)
}

func ProposeRmContract(userKeyName, address string) {
	msg := wallet.ExecuteMsg{RmContract: &wallet.RmContract{Address: address}}
	proposeAdmin(userKeyName, fmt.Sprintf("remove contract %s", address), msg)
}

func Vote(userKeyName string, proposalID int64, vote string) {
	s := newSigningService(userKeyName)
	res := s.execute(context.Background(), cwmultisig.ExecuteMsg{Vote: &cwmultisig.Vote{ProposalID: proposalID, Vote: vote}})
	fmt.Printf("Vote success. txn: %s\n", res.TxHash)
}

func Execute(userKeyName string, proposalID int64) {
	s := newSigningService(userKeyName)
	res := s.execute(context.Background(), cwmultisig.ExecuteMsg{Execute: &cwmultisig.ProposalIDMsg{ProposalID: proposalID}})
	fmt.Printf("Execute success. txn: %s\n", res.TxHash)
	for _, status := range res.Attributes("wasm", "status") {
		fmt.Printf("status: %s\n", status)
	}
}

func Close(userKeyName string, proposalID int64) {
	s := newSigningService(userKeyName)
	res := s.execute(context.Background(), cwmultisig.ExecuteMsg{Close: &cwmultisig.ProposalIDMsg{ProposalID: proposalID}})
	fmt.Printf("Close success. txn: %s\n", res.TxHash)
}

func proposeAdmin(userKeyName, title string, msg wallet.ExecuteMsg) {
	payload, err := msg.Marshal()
	if err != nil {
		panic(err)
	}
	s := newSigningService(userKeyName)
	env, err := envelope.Encode(base.Wallet(), payload)
	if err != nil {
		panic(err)
	}
	s.propose(title, title, []json.RawMessage{env})
}

func propose(userKeyName, title, description string, msgs []json.RawMessage) {
	newSigningService(userKeyName).propose(title, description, msgs)
}

func (s *Service) propose(title, description string, msgs []json.RawMessage) {
	res := s.execute(context.Background(), cwmultisig.ExecuteMsg{Propose: &cwmultisig.Propose{
		Title:       title,
		Description: description,
		Msgs:        msgs,
	}})
	id, _ := res.Attribute("wasm", "proposal_id")
	fmt.Printf("Propose success. txn: %s proposal_id: %s\n", res.TxHash, id)
}
