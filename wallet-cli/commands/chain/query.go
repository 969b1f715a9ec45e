package chain

import (
	"context"
	"fmt"
)

func QueryNode() {
	s := NewService()
	resp, err := s.ChainIO.QueryNodeStatus(context.Background())
	if err != nil {
		fmt.Printf("Failed. Error msg: %+v\n", err)
		return
	}
	fmt.Printf(
		"===NodeInfo===\n1. NodeVersion: %s\n2. Network: %s\n3. DefaultNodeID: %s\n"+
			"===SyncInfo===\n1. CatchingUp: %t\n2. LatestBlockTime: %s\n3. LatestBlockHeight: %d\n",
		resp.NodeInfo.Version, resp.NodeInfo.Network, resp.NodeInfo.DefaultNodeID,
		resp.SyncInfo.CatchingUp, resp.SyncInfo.LatestBlockTime, resp.SyncInfo.LatestBlockHeight,
	)
}

func QueryTxn(txnHash string) {
	s := NewService()
	resp, err := s.ChainIO.QueryTransaction(context.Background(), txnHash)
	if err != nil {
		fmt.Printf("Query Txn Failed. Error msg: %s\n", err)
		return
	}
	fmt.Printf("===TxnInfo===\n1. TxHash: %s\n2. Height: %d\n3. Code: %d\n", resp.Hash.String(), resp.Height, resp.TxResult.Code)
	for _, event := range resp.TxResult.Events {
		fmt.Printf("- %s\n", event.Type)
		for _, attr := range event.Attributes {
			fmt.Printf("    %s: %s\n", attr.Key, attr.Value)
		}
	}
}

func QueryAccount(account string) {
	s := NewService()
	resp, err := s.ChainIO.QueryAccount(account)
	if err != nil {
		fmt.Printf("Failed. Error msg: %+v\n", err)
		return
	}
	fmt.Printf("===AccountInfo===\n1. Address: %s\n2. AccountNumber: %d\n3. Sequence: %d\n", resp.GetAddress(), resp.GetAccountNumber(), resp.GetSequence())
}

func QueryBalances(account string) {
	s := NewService()
	coins, err := s.ChainIO.QueryBalances(context.Background(), account)
	if err != nil {
		fmt.Printf("Failed. Error msg: %+v\n", err)
		return
	}
	fmt.Printf("===Balances===\n%s\n", coins.String())
}
