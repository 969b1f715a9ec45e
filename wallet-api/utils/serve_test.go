package utils

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Terrorbear/anchor-guardian/wallet-api/logger"
)

func TestRunServerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	errChan := RunServer(ctx, &http.Server{Addr: "localhost:18092", Handler: http.NotFoundHandler()}, "test", logger.NewMockLogger())

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err, ok := <-errChan:
		assert.False(t, ok, "unexpected error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRunServerReportsListenFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errChan := RunServer(ctx, &http.Server{Addr: "localhost:-1"}, "broken", logger.NewMockLogger())

	select {
	case err := <-errChan:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken failed")
	case <-time.After(2 * time.Second):
		t.Fatal("listen failure not reported")
	}
}
