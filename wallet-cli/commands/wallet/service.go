package wallet

import (
	"context"

	"github.com/Terrorbear/anchor-guardian/smartwallet/host"
	"github.com/Terrorbear/anchor-guardian/wallet-cli/commands/base"
	"github.com/Terrorbear/anchor-guardian/wallet-cli/conf"
)

type Service struct {
	Wallet string
	Host   host.Host
}

func NewService() *Service {
	conf.InitConfig()
	chainIO := base.ChainIO(base.Logger(), nil)
	return &Service{Wallet: base.Wallet(), Host: base.Host(chainIO, nil)}
}

func newSigningService(keyName string) *Service {
	conf.InitConfig()
	chainIO := base.Signer(base.ChainIO(base.Logger(), nil), keyName)
	return &Service{Wallet: base.Wallet(), Host: base.Host(chainIO, nil)}
}

type marshaler interface {
	Marshal() ([]byte, error)
}

func (s *Service) query(ctx context.Context, msg marshaler) []byte {
	raw, err := msg.Marshal()
	if err != nil {
		panic(err)
	}
	out, err := s.Host.Query(ctx, s.Wallet, raw)
	if err != nil {
		panic(err)
	}
	return out
}
