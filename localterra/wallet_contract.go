package localterra

import (
	"context"

	abci "github.com/cometbft/cometbft/abci/types"

	"github.com/Terrorbear/anchor-guardian/smartwallet"
	"github.com/Terrorbear/anchor-guardian/smartwallet/envelope"
	"github.com/Terrorbear/anchor-guardian/smartwallet/events"
	"github.com/Terrorbear/anchor-guardian/wallet-api/logger"
)

type walletContract struct {
	logger logger.Logger
	sink   events.Sink
	opts   []smartwallet.Option
}

// WalletCode deploys the smart wallet. Audit events are reported on the transaction and also
// sent to sink when it is not nil.
func WalletCode(l logger.Logger, sink events.Sink, opts ...smartwallet.Option) Factory {
	return func() Contract {
		return &walletContract{logger: l, sink: sink, opts: opts}
	}
}

func (c *walletContract) open(env Env) (*smartwallet.Wallet, *events.Recorder) {
	rec := events.NewRecorder()
	var sink events.Sink = rec
	if c.sink != nil {
		sink = events.Fanout{rec, c.sink}
	}
	opts := append(append([]smartwallet.Option(nil), c.opts...), smartwallet.WithSink(sink))
	return smartwallet.New(env.Store, env.Host, c.logger, opts...), rec
}

func (c *walletContract) Instantiate(ctx context.Context, env Env, msg []byte) (*Response, error) {
	w, rec := c.open(env)
	ctx = events.WithHeight(ctx, env.Height)
	if _, err := w.Instantiate(ctx, env.Sender, msg); err != nil {
		return nil, err
	}
	resp := recorded(rec)
	cfg, err := w.Policies().Settings(ctx)
	if err != nil {
		return nil, err
	}
	resp.AddAttribute("owner", cfg.Owner)
	if cfg.GoverningMultisig != "" {
		resp.AddAttribute("cw3_address", cfg.GoverningMultisig)
	}
	return resp, nil
}

func (c *walletContract) Execute(ctx context.Context, env Env, msg []byte) (*Response, error) {
	w, rec := c.open(env)
	tx, err := w.Execute(ctx, env.Sender, msg, uint64(env.Height))
	if tx == nil {
		return nil, err
	}
	resp := recorded(rec)
	if action, derr := envelope.Discriminant(msg); derr == nil {
		resp.AddAttribute("action", action)
	}
	resp.Data = tx.Data
	return resp, err
}

func (c *walletContract) Query(ctx context.Context, env Env, msg []byte) ([]byte, error) {
	w, _ := c.open(env)
	return w.Query(ctx, msg, uint64(env.Height))
}

func recorded(rec *events.Recorder) *Response {
	resp := &Response{}
	for _, e := range rec.Events() {
		resp.Events = append(resp.Events, e.ABCI())
	}
	return resp
}

// eventAttrs is a small helper for contracts building their wasm attributes.
func eventAttrs(kv ...string) []abci.EventAttribute {
	attrs := make([]abci.EventAttribute, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		attrs = append(attrs, abci.EventAttribute{Key: kv[i], Value: kv[i+1]})
	}
	return attrs
}
