package utils

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Terrorbear/anchor-guardian/wallet-api/logger"
)

const shutdownGrace = 5 * time.Second

// RunServer serves srv until ctx is done, then shuts it down. Failures are sent on the returned
// channel, which is closed once the server has stopped.
func RunServer(ctx context.Context, srv *http.Server, name string, l logger.Logger) <-chan error {
	// one slot for the listener, one for shutdown
	errChan := make(chan error, 2)
	served := make(chan struct{})
	if srv.ReadHeaderTimeout == 0 {
		srv.ReadHeaderTimeout = 5 * time.Second
	}

	go func() {
		defer close(served)
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			l.Info("server closed", logger.WithField("server", name))
			return
		}
		errChan <- WrapError(name+" failed", err)
	}()

	go func() {
		defer close(errChan)
		<-ctx.Done()
		l.Info("shutdown signal received", logger.WithField("server", name))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errChan <- WrapError(name+" shutdown failed", err)
		}
		<-served
		l.Info("shutdown completed", logger.WithField("server", name))
	}()
	return errChan
}
