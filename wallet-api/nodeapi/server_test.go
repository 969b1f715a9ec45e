package nodeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/Terrorbear/anchor-guardian/scenario"
	"github.com/Terrorbear/anchor-guardian/smartwallet/envelope"
	"github.com/Terrorbear/anchor-guardian/wallet-api/logger"
	cwmultisig "github.com/Terrorbear/anchor-guardian/wallet-cw/multisig"
	"github.com/Terrorbear/anchor-guardian/wallet-cw/wallet"
)

type body struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type nodeAPITestSuite struct {
	suite.Suite
	router *gin.Engine
	report *scenario.Report
}

func TestNodeAPI(t *testing.T) {
	suite.Run(t, new(nodeAPITestSuite))
}

func (s *nodeAPITestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	log := logger.NewMockLogger()
	runner, err := scenario.NewRunner(scenario.DefaultConfig(), log)
	s.Require().NoError(err)
	s.report, err = runner.Run(context.Background())
	s.Require().NoError(err)

	ledger := runner.Ledger()
	querier := ledger.HostFor(s.report.Accounts["owner"])
	server := NewServer(s.report.Contracts["smart_wallet"], querier, log, WithHeight(ledger.Height))
	s.router = server.Router()
}

func (s *nodeAPITestSuite) do(method, path string, payload interface{}) (*httptest.ResponseRecorder, body) {
	var buf bytes.Buffer
	if payload != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(payload))
	}
	req, err := http.NewRequest(method, path, &buf)
	s.Require().NoError(err)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var b body
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &b))
	return w, b
}

func (s *nodeAPITestSuite) TestHealth() {
	w, b := s.do(http.MethodGet, "/api/health", nil)
	s.Equal(http.StatusOK, w.Code)
	var view HealthView
	s.Require().NoError(json.Unmarshal(b.Data, &view))
	s.Equal(s.report.Contracts["smart_wallet"], view.Wallet)
	s.Positive(view.Height)
}

func (s *nodeAPITestSuite) TestConfig() {
	w, b := s.do(http.MethodGet, "/api/config", nil)
	s.Equal(http.StatusOK, w.Code)
	cfg, err := wallet.UnmarshalConfigResponse(b.Data)
	s.Require().NoError(err)
	s.Equal(s.report.Contracts["cw3"], cfg.Cw3Address)
	s.Len(cfg.WhitelistedContracts, 2)
}

func (s *nodeAPITestSuite) TestHotWallets() {
	w, b := s.do(http.MethodGet, "/api/hot-wallets", nil)
	s.Equal(http.StatusOK, w.Code)
	var views []HotWalletView
	s.Require().NoError(json.Unmarshal(b.Data, &views))
	s.Len(views, 2)
	for _, v := range views {
		s.Equal("0", v.Utilisation)
		s.Equal(v.GasTankMax, v.Remaining)
	}

	w, b = s.do(http.MethodGet, "/api/hot-wallets/"+s.report.Accounts["farmer"], nil)
	s.Equal(http.StatusOK, w.Code)
	var view HotWalletView
	s.Require().NoError(json.Unmarshal(b.Data, &view))
	s.Equal("farmer", view.Label)
	s.Equal([]int64{0, 1, 2}, view.WhitelistedMessages)

	w, b = s.do(http.MethodGet, "/api/hot-wallets/"+s.report.Accounts["voter2"], nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(20001, b.Code)
}

func (s *nodeAPITestSuite) TestCanExecute() {
	cmd, err := envelope.Envelope{Target: s.report.Contracts["market"], Payload: []byte(`{"repay_stable":{}}`)}.Marshal()
	s.Require().NoError(err)

	w, b := s.do(http.MethodPost, "/api/can-execute", CanExecutePayload{Sender: s.report.Accounts["owner"], Command: cmd})
	s.Equal(http.StatusOK, w.Code)
	out, err := wallet.UnmarshalCanExecuteResponse(b.Data)
	s.Require().NoError(err)
	s.True(out.CanExecute)
	s.Equal("owner", out.Role)

	w, b = s.do(http.MethodPost, "/api/can-execute", CanExecutePayload{Sender: s.report.Accounts["voter3"], Command: cmd})
	s.Equal(http.StatusOK, w.Code)
	out, err = wallet.UnmarshalCanExecuteResponse(b.Data)
	s.Require().NoError(err)
	s.False(out.CanExecute)
	s.Require().NotNil(out.Reason)
	s.Equal("unauthorized", *out.Reason)

	w, _ = s.do(http.MethodPost, "/api/can-execute", CanExecutePayload{Sender: s.report.Accounts["owner"], Command: json.RawMessage(`{"wasm":{}}`)})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *nodeAPITestSuite) TestProposals() {
	w, b := s.do(http.MethodGet, "/api/proposals", nil)
	s.Equal(http.StatusOK, w.Code)
	var proposals []cwmultisig.ProposalResponse
	s.Require().NoError(json.Unmarshal(b.Data, &proposals))
	s.Len(proposals, 3)
	for _, p := range proposals {
		s.Equal(cwmultisig.Executed, p.Status)
	}

	w, b = s.do(http.MethodGet, "/api/proposals?start_after=2&limit=5", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Require().NoError(json.Unmarshal(b.Data, &proposals))
	s.Require().Len(proposals, 1)
	s.Equal(int64(3), proposals[0].ID)

	w, _ = s.do(http.MethodGet, "/api/proposals?limit=abc", nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w, b = s.do(http.MethodGet, "/api/proposals/1", nil)
	s.Equal(http.StatusOK, w.Code)
	p, err := cwmultisig.UnmarshalProposalResponse(b.Data)
	s.Require().NoError(err)
	s.Len(p.Msgs, 2)

	w, b = s.do(http.MethodGet, "/api/proposals/1/votes", nil)
	s.Equal(http.StatusOK, w.Code)
	var votes []cwmultisig.VoteInfo
	s.Require().NoError(json.Unmarshal(b.Data, &votes))
	s.Len(votes, 2)

	w, _ = s.do(http.MethodGet, "/api/proposals/99", nil)
	s.Equal(http.StatusNotFound, w.Code)
	w, _ = s.do(http.MethodGet, "/api/proposals/zero", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *nodeAPITestSuite) TestVoters() {
	w, b := s.do(http.MethodGet, "/api/voters", nil)
	s.Equal(http.StatusOK, w.Code)
	var voters []cwmultisig.Voter
	s.Require().NoError(json.Unmarshal(b.Data, &voters))
	s.Len(voters, 3)
}
