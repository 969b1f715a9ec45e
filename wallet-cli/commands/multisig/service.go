package multisig

import (
	"context"

	"github.com/Terrorbear/anchor-guardian/smartwallet/host"
	"github.com/Terrorbear/anchor-guardian/wallet-api/chainio/io"
	"github.com/Terrorbear/anchor-guardian/wallet-cli/commands/base"
	"github.com/Terrorbear/anchor-guardian/wallet-cli/conf"
	cwmultisig "github.com/Terrorbear/anchor-guardian/wallet-cw/multisig"
	"github.com/Terrorbear/anchor-guardian/wallet-cw/wallet"
)

type Service struct {
	Wallet   string
	Multisig string
	Host     host.Host
}

func NewService() *Service {
	conf.InitConfig()
	return newService(base.ChainIO(base.Logger(), nil))
}

func newSigningService(keyName string) *Service {
	conf.InitConfig()
	return newService(base.Signer(base.ChainIO(base.Logger(), nil), keyName))
}

// newService falls back to the wallet's governing multisig when none is configured.
func newService(chainIO io.ChainIO) *Service {
	s := &Service{Wallet: conf.C.Contract.Wallet, Multisig: conf.C.Contract.Multisig, Host: base.Host(chainIO, nil)}
	if s.Multisig != "" {
		return s
	}
	msg := wallet.QueryMsg{Config: &wallet.Config{}}
	raw, err := msg.Marshal()
	if err != nil {
		panic(err)
	}
	out, err := s.Host.Query(context.Background(), base.Wallet(), raw)
	if err != nil {
		panic(err)
	}
	cfg, err := wallet.UnmarshalConfigResponse(out)
	if err != nil {
		panic(err)
	}
	if cfg.Cw3Address == "" {
		panic("wallet has no governing multisig")
	}
	s.Multisig = cfg.Cw3Address
	return s
}

func (s *Service) execute(ctx context.Context, msg cwmultisig.ExecuteMsg) *host.TxResult {
	raw, err := msg.Marshal()
	if err != nil {
		panic(err)
	}
	res, err := s.Host.Submit(ctx, s.Multisig, raw, nil)
	if err != nil {
		panic(err)
	}
	return res
}

func (s *Service) query(ctx context.Context, msg cwmultisig.QueryMsg) []byte {
	raw, err := msg.Marshal()
	if err != nil {
		panic(err)
	}
	out, err := s.Host.Query(ctx, s.Multisig, raw)
	if err != nil {
		panic(err)
	}
	return out
}
