package chain

import (
	"github.com/Terrorbear/anchor-guardian/wallet-api/chainio/io"
	"github.com/Terrorbear/anchor-guardian/wallet-cli/commands/base"
	"github.com/Terrorbear/anchor-guardian/wallet-cli/conf"
)

type Service struct {
	ChainIO io.ChainIO
}

func NewService() *Service {
	conf.InitConfig()
	return &Service{ChainIO: base.ChainIO(base.Logger(), nil)}
}
