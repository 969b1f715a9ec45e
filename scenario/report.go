package scenario

import (
	"bytes"
	"context"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Terrorbear/anchor-guardian/localterra"
	"github.com/Terrorbear/anchor-guardian/smartwallet/events"
	"github.com/Terrorbear/anchor-guardian/wallet-api/utils"
	"github.com/Terrorbear/anchor-guardian/wallet-cw/cw20"
	"github.com/Terrorbear/anchor-guardian/wallet-cw/wallet"
)

type Step struct {
	Name    string `yaml:"name"`
	Sender  string `yaml:"sender,omitempty"`
	Height  int64  `yaml:"height"`
	TxHash  string `yaml:"tx_hash,omitempty"`
	Expect  string `yaml:"expect"`
	Outcome string `yaml:"outcome"`
	Error   string `yaml:"error,omitempty"`
}

type HotWallet struct {
	Address        string  `yaml:"address"`
	Label          string  `yaml:"label"`
	GasCooldown    int64   `yaml:"gas_cooldown"`
	GasTankBalance string  `yaml:"gas_tank_balance"`
	GasTankMax     string  `yaml:"gas_tank_max"`
	Utilisation    string  `yaml:"utilisation"`
	LastUsedAt     *int64  `yaml:"last_used_at,omitempty"`
	Messages       []int64 `yaml:"whitelisted_messages"`
}

type Call struct {
	Seq    uint64 `yaml:"seq"`
	Height int64  `yaml:"height"`
	Sender string `yaml:"sender"`
	Kind   string `yaml:"kind"`
	Funds  string `yaml:"funds,omitempty"`
	Token  string `yaml:"token,omitempty"`
	Amount string `yaml:"amount,omitempty"`
}

type AuditEntry struct {
	Type       string            `yaml:"type"`
	Action     string            `yaml:"action"`
	Caller     string            `yaml:"caller"`
	Height     int64             `yaml:"height"`
	Attributes map[string]string `yaml:"attributes,omitempty"`
}

// Report is what a run leaves behind: the addresses involved, every step with its outcome, and
// the resulting state of the wallet and the stand-in contracts.
type Report struct {
	Accounts   map[string]string `yaml:"accounts"`
	Contracts  map[string]string `yaml:"contracts"`
	Steps      []Step            `yaml:"steps"`
	HotWallets []HotWallet       `yaml:"hot_wallets,omitempty"`
	Calls      map[string][]Call `yaml:"calls,omitempty"`
	Balances   map[string]string `yaml:"balances,omitempty"`
	Audit      []AuditEntry      `yaml:"audit,omitempty"`
}

func newReport() *Report {
	return &Report{
		Accounts:  make(map[string]string),
		Contracts: make(map[string]string),
		Calls:     make(map[string][]Call),
		Balances:  make(map[string]string),
	}
}

// YAML renders the report with two-space indentation.
func (r *Report) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Step returns the first step called name.
func (r *Report) Step(name string) (Step, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return Step{}, false
}

func (r *Report) nameOf(addr string) string {
	names := make([]string, 0, len(r.Accounts))
	for name := range r.Accounts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if r.Accounts[name] == addr {
			return name
		}
	}
	return addr
}

func (r *Runner) summarize(ctx context.Context) error {
	out, err := r.ledger.Query(ctx, r.wallet, []byte(`{"hot_wallets":{}}`))
	if err != nil {
		return err
	}
	hws, err := wallet.UnmarshalHotWalletsResponse(out)
	if err != nil {
		return err
	}
	for _, hw := range hws.HotWallets {
		used, err := utils.Utilisation(hw.GasTankBalance, hw.GasTankMax, 6)
		if err != nil {
			return err
		}
		r.report.HotWallets = append(r.report.HotWallets, HotWallet{
			Address:        hw.Address,
			Label:          hw.Label,
			GasCooldown:    hw.GasCooldown,
			GasTankBalance: hw.GasTankBalance,
			GasTankMax:     hw.GasTankMax,
			Utilisation:    used.String(),
			LastUsedAt:     hw.LastUsedAt,
			Messages:       hw.WhitelistedMessages,
		})
	}

	for name, addr := range map[string]string{
		"market":        r.market,
		"overseer":      r.overseer,
		"bluna_custody": r.custody,
		"reward":        r.reward,
	} {
		calls, err := localterra.RecordedCalls(ctx, r.ledger, addr)
		if err != nil {
			return err
		}
		for _, c := range calls {
			r.report.Calls[name] = append(r.report.Calls[name], Call{
				Seq:    c.Seq,
				Height: c.Height,
				Sender: r.report.contractOrAccount(c.Sender),
				Kind:   c.Kind,
				Funds:  c.Funds,
				Token:  r.report.contractOrAccount(c.Token),
				Amount: c.Amount,
			})
		}
	}

	native, err := r.ledger.Balance(ctx, r.wallet, r.cfg.GasDenom)
	if err != nil {
		return err
	}
	r.report.Balances["smart_wallet/"+native.Denom] = native.Amount.String()
	for name, addr := range map[string]string{"smart_wallet": r.wallet, "bluna_custody": r.custody} {
		bal, err := r.cw20Balance(ctx, addr)
		if err != nil {
			return err
		}
		r.report.Balances[name+"/bluna"] = bal
	}

	for _, e := range r.audit.Events() {
		r.report.Audit = append(r.report.Audit, auditEntry(e))
	}
	return nil
}

func (r *Runner) cw20Balance(ctx context.Context, addr string) (string, error) {
	query := cw20.QueryMsg{Balance: &cw20.Balance{Address: addr}}
	raw, err := query.Marshal()
	if err != nil {
		return "", err
	}
	out, err := r.ledger.Query(ctx, r.bluna, raw)
	if err != nil {
		return "", err
	}
	bal, err := cw20.UnmarshalBalanceResponse(out)
	if err != nil {
		return "", err
	}
	return bal.Balance, nil
}

func (r *Report) contractOrAccount(addr string) string {
	if addr == "" {
		return ""
	}
	for name, a := range r.Contracts {
		if a == addr {
			return name
		}
	}
	return r.nameOf(addr)
}

func auditEntry(e events.Event) AuditEntry {
	entry := AuditEntry{Type: e.Type, Action: e.Action, Caller: e.Caller, Height: e.Height}
	if len(e.Attributes) > 0 {
		entry.Attributes = make(map[string]string, len(e.Attributes))
		for _, attr := range e.Attributes {
			entry.Attributes[attr.Key] = attr.Value
		}
	}
	return entry
}
