package nodeapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Terrorbear/anchor-guardian/smartwallet/envelope"
	walleterrors "github.com/Terrorbear/anchor-guardian/smartwallet/errors"
	"github.com/Terrorbear/anchor-guardian/wallet-api/logger"
	"github.com/Terrorbear/anchor-guardian/wallet-api/nodeapi/resp"
	"github.com/Terrorbear/anchor-guardian/wallet-api/utils"
	cwmultisig "github.com/Terrorbear/anchor-guardian/wallet-cw/multisig"
	"github.com/Terrorbear/anchor-guardian/wallet-cw/wallet"
)

const utilisationPlaces = 6

type HotWalletView struct {
	wallet.HotWalletResponse
	// Utilisation is gas_tank_balance / gas_tank_max.
	Utilisation string `json:"utilisation"`
	Remaining   string `json:"remaining"`
}

type CanExecutePayload struct {
	Sender  string          `json:"sender" binding:"required"`
	Command json.RawMessage `json:"command" binding:"required"`
}

type HealthView struct {
	Wallet string `json:"wallet"`
	Height int64  `json:"height,omitempty"`
}

func (s *Server) Health(c *gin.Context) {
	view := HealthView{Wallet: s.walletAddr}
	if s.height != nil {
		view.Height = s.height()
	}
	c.JSON(http.StatusOK, resp.OK.WithData(view))
}

func (s *Server) Config(c *gin.Context) {
	cfg, err := s.config(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK.WithData(cfg))
}

func (s *Server) HotWallets(c *gin.Context) {
	raw, err := s.query(c, s.walletAddr, &wallet.QueryMsg{HotWallets: &wallet.HotWallets{}})
	if err != nil {
		s.fail(c, err)
		return
	}
	hws, err := wallet.UnmarshalHotWalletsResponse(raw)
	if err != nil {
		c.JSON(http.StatusInternalServerError, resp.ErrJson)
		return
	}
	views := make([]HotWalletView, 0, len(hws.HotWallets))
	for _, hw := range hws.HotWallets {
		view, err := hotWalletView(hw)
		if err != nil {
			c.JSON(http.StatusInternalServerError, resp.ErrJson.WithMsg(err.Error()))
			return
		}
		views = append(views, view)
	}
	c.JSON(http.StatusOK, resp.OK.WithData(views))
}

func (s *Server) HotWallet(c *gin.Context) {
	raw, err := s.query(c, s.walletAddr, &wallet.QueryMsg{HotWallet: &wallet.QueryHot{Address: c.Param("address")}})
	if err != nil {
		s.fail(c, err)
		return
	}
	hw, err := wallet.UnmarshalHotWalletResponse(raw)
	if err != nil {
		c.JSON(http.StatusInternalServerError, resp.ErrJson)
		return
	}
	view, err := hotWalletView(hw)
	if err != nil {
		c.JSON(http.StatusInternalServerError, resp.ErrJson.WithMsg(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp.OK.WithData(view))
}

// CanExecute dry-runs a command for sender. Nothing is charged.
func (s *Server) CanExecute(c *gin.Context) {
	var payload CanExecutePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, resp.ErrParam)
		return
	}
	if _, err := envelope.Decode(payload.Command); err != nil {
		c.JSON(http.StatusBadRequest, resp.ErrEnvelope.WithMsg(err.Error()))
		return
	}
	raw, err := s.query(c, s.walletAddr, &wallet.QueryMsg{CanExecute: &wallet.CanExecute{Command: payload.Command, Sender: payload.Sender}})
	if err != nil {
		s.fail(c, err)
		return
	}
	out, err := wallet.UnmarshalCanExecuteResponse(raw)
	if err != nil {
		c.JSON(http.StatusInternalServerError, resp.ErrJson)
		return
	}
	c.JSON(http.StatusOK, resp.OK.WithData(out))
}

func (s *Server) Proposals(c *gin.Context) {
	cw3, ok := s.multisig(c)
	if !ok {
		return
	}
	list := &cwmultisig.ListProposals{}
	for param, dst := range map[string]**int64{"start_after": &list.StartAfter, "limit": &list.Limit} {
		v := c.Query(param)
		if v == "" {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, resp.ErrParam.WithMsg(param))
			return
		}
		*dst = &n
	}
	raw, err := s.query(c, cw3, &cwmultisig.QueryMsg{ListProposals: list})
	if err != nil {
		s.fail(c, err)
		return
	}
	out, err := cwmultisig.UnmarshalProposalListResponse(raw)
	if err != nil {
		c.JSON(http.StatusInternalServerError, resp.ErrJson)
		return
	}
	c.JSON(http.StatusOK, resp.OK.WithData(out.Proposals))
}

func (s *Server) Proposal(c *gin.Context) {
	id, ok := proposalID(c)
	if !ok {
		return
	}
	cw3, ok := s.multisig(c)
	if !ok {
		return
	}
	raw, err := s.query(c, cw3, &cwmultisig.QueryMsg{Proposal: &cwmultisig.ProposalIDMsg{ProposalID: id}})
	if err != nil {
		s.fail(c, err)
		return
	}
	out, err := cwmultisig.UnmarshalProposalResponse(raw)
	if err != nil {
		c.JSON(http.StatusInternalServerError, resp.ErrJson)
		return
	}
	c.JSON(http.StatusOK, resp.OK.WithData(out))
}

func (s *Server) Votes(c *gin.Context) {
	id, ok := proposalID(c)
	if !ok {
		return
	}
	cw3, ok := s.multisig(c)
	if !ok {
		return
	}
	raw, err := s.query(c, cw3, &cwmultisig.QueryMsg{ListVotes: &cwmultisig.ListVotes{ProposalID: id}})
	if err != nil {
		s.fail(c, err)
		return
	}
	out, err := cwmultisig.UnmarshalVoteListResponse(raw)
	if err != nil {
		c.JSON(http.StatusInternalServerError, resp.ErrJson)
		return
	}
	c.JSON(http.StatusOK, resp.OK.WithData(out.Votes))
}

func (s *Server) Voters(c *gin.Context) {
	cw3, ok := s.multisig(c)
	if !ok {
		return
	}
	raw, err := s.query(c, cw3, &cwmultisig.QueryMsg{ListVoters: &cwmultisig.ListVoters{}})
	if err != nil {
		s.fail(c, err)
		return
	}
	out, err := cwmultisig.UnmarshalVoterListResponse(raw)
	if err != nil {
		c.JSON(http.StatusInternalServerError, resp.ErrJson)
		return
	}
	c.JSON(http.StatusOK, resp.OK.WithData(out.Voters))
}

type marshaler interface {
	Marshal() ([]byte, error)
}

func (s *Server) query(c *gin.Context, target string, msg marshaler) ([]byte, error) {
	raw, err := msg.Marshal()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.queryTimeout)
	defer cancel()
	return s.querier.Query(ctx, target, raw)
}

func (s *Server) config(c *gin.Context) (wallet.ConfigResponse, error) {
	raw, err := s.query(c, s.walletAddr, &wallet.QueryMsg{Config: &wallet.Config{}})
	if err != nil {
		return wallet.ConfigResponse{}, err
	}
	return wallet.UnmarshalConfigResponse(raw)
}

// multisig resolves the governing multisig from the wallet config, answering the request itself
// when it cannot.
func (s *Server) multisig(c *gin.Context) (string, bool) {
	cfg, err := s.config(c)
	if err != nil {
		s.fail(c, err)
		return "", false
	}
	if cfg.Cw3Address == "" {
		c.JSON(http.StatusNotFound, resp.ErrNoMultisig)
		return "", false
	}
	return cfg.Cw3Address, true
}

func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, walleterrors.ErrNotFound), errors.Is(err, walleterrors.ErrUnknownWallet):
		c.JSON(http.StatusNotFound, resp.ErrNotFound.WithMsg(err.Error()))
	case errors.Is(err, walleterrors.ErrInvalidRequest), errors.Is(err, walleterrors.ErrMalformedEnvelope):
		c.JSON(http.StatusBadRequest, resp.ErrParam.WithMsg(err.Error()))
	default:
		s.logger.Error("query failed", logger.WithField("path", c.FullPath()), logger.WithField("err", err))
		c.JSON(http.StatusBadGateway, resp.ErrQuery.WithMsg(err.Error()))
	}
}

func proposalID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, resp.ErrProposal)
		return 0, false
	}
	return id, true
}

func hotWalletView(hw wallet.HotWalletResponse) (HotWalletView, error) {
	used, err := utils.Utilisation(hw.GasTankBalance, hw.GasTankMax, utilisationPlaces)
	if err != nil {
		return HotWalletView{}, err
	}
	left, err := utils.Remaining(hw.GasTankBalance, hw.GasTankMax)
	if err != nil {
		return HotWalletView{}, err
	}
	return HotWalletView{HotWalletResponse: hw, Utilisation: used.String(), Remaining: left.String()}, nil
}
