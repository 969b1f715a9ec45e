// Package nodeapi serves a read-mostly HTTP view of one smart wallet: its configuration, the
// state of its hot wallets, and the proposals of its governing multisig.
package nodeapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Terrorbear/anchor-guardian/smartwallet/host"
	"github.com/Terrorbear/anchor-guardian/wallet-api/logger"
	"github.com/Terrorbear/anchor-guardian/wallet-api/utils"
)

const defaultQueryTimeout = 10 * time.Second

type Server struct {
	walletAddr   string
	querier      host.Host
	logger       logger.Logger
	queryTimeout time.Duration
	height       func() int64
}

type Option func(*Server)

// WithHeight reports the current block height on /api/health.
func WithHeight(height func() int64) Option {
	return func(s *Server) { s.height = height }
}

func WithQueryTimeout(d time.Duration) Option {
	return func(s *Server) { s.queryTimeout = d }
}

func NewServer(walletAddr string, querier host.Host, l logger.Logger, opts ...Option) *Server {
	s := &Server{
		walletAddr:   walletAddr,
		querier:      querier,
		logger:       l,
		queryTimeout: defaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetupRoutes registers every endpoint on router.
func (s *Server) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.GET("/health", s.Health)
	api.GET("/config", s.Config)
	api.GET("/hot-wallets", s.HotWallets)
	api.GET("/hot-wallets/:address", s.HotWallet)
	api.POST("/can-execute", s.CanExecute)
	api.GET("/proposals", s.Proposals)
	api.GET("/proposals/:id", s.Proposal)
	api.GET("/proposals/:id/votes", s.Votes)
	api.GET("/voters", s.Voters)
}

// Router returns a gin engine with recovery and the routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.accessLog())
	s.SetupRoutes(router)
	return router
}

// Start serves until ctx is done. The returned channel is closed after shutdown.
func (s *Server) Start(ctx context.Context, ipPortAddress string) <-chan error {
	s.logger.Info("Starting node api", logger.WithField("ipPortAddress", ipPortAddress), logger.WithField("wallet", s.walletAddr))
	return utils.RunServer(ctx, &http.Server{Addr: ipPortAddress, Handler: s.Router()}, "node api", s.logger)
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			logger.WithField("method", c.Request.Method),
			logger.WithField("path", c.FullPath()),
			logger.WithField("status", c.Writer.Status()),
			logger.WithField("latency", time.Since(start).String()))
	}
}
