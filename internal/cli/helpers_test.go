package cli

import (
	"bytes"
	"context"
	"log/slog"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLogger(t *testing.T) {
	ctx := context.Background()

	logger, err := createLogger(false, "")
	require.NoError(t, err)
	assert.True(t, logger.Enabled(ctx, slog.LevelWarn))
	assert.False(t, logger.Enabled(ctx, slog.LevelInfo))

	logger, err = createLogger(false, "info")
	require.NoError(t, err)
	assert.True(t, logger.Enabled(ctx, slog.LevelInfo))
	assert.False(t, logger.Enabled(ctx, slog.LevelDebug))

	logger, err = createLogger(true, "error")
	require.NoError(t, err)
	assert.True(t, logger.Enabled(ctx, slog.LevelDebug), "debug wins over level")

	_, err = createLogger(false, "loud")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestRun_InvalidLogLevel(t *testing.T) {
	_, err := Run(context.Background(), RunOptions{Simulate: true, LogLevel: "loud", Quiet: true})
	assert.ErrorContains(t, err, "invalid log level")
}

func interruptedContext(sig syscall.Signal) *SignalContext {
	sc := NewSignalContext(context.Background())
	sc.mu.Lock()
	sc.sigVal = sig
	sc.mu.Unlock()
	return sc
}

func TestInterruptedBy(t *testing.T) {
	assert.Nil(t, interruptedBy(context.Background()))

	plain := NewSignalContext(context.Background())
	defer plain.Cancel()
	assert.Nil(t, interruptedBy(plain))

	sc := interruptedContext(syscall.SIGTERM)
	defer sc.Cancel()
	assert.Equal(t, syscall.SIGTERM, interruptedBy(sc))
}

func TestServe_ReportsSignal(t *testing.T) {
	sc := interruptedContext(syscall.SIGINT)
	defer sc.Cancel()

	var out bytes.Buffer
	ready := make(chan string, 1)
	served := make(chan error, 1)
	go func() {
		served <- Serve(sc, ServeOptions{Addr: "127.0.0.1:0", Ready: ready, Out: &out})
	}()

	select {
	case <-ready:
	case err := <-served:
		t.Fatalf("bridge exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("bridge did not start")
	}

	sc.Cancel()
	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("bridge did not stop")
	}
	assert.Contains(t, out.String(), "Received interrupt, shutting down.")
	assert.Contains(t, out.String(), "Bridge stopped.")
}
