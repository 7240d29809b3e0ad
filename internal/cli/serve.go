package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	httpbridge "github.com/aretw0/strider/pkg/adapters/http"
	"github.com/aretw0/strider/pkg/adapters/memory"
)

// ServeOptions configures the simulated bridge server.
type ServeOptions struct {
	Addr     string
	User     string
	Password string
	LogLevel string
	Debug    bool

	// Ready, when set, receives the bound address once the listener is up.
	Ready chan<- string
	// Out receives startup messages. Nil means stdout.
	Out io.Writer
}

// Serve exposes an in-process simulated robot through the HTTP bridge until ctx is done.
func Serve(ctx context.Context, opts ServeOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	logger, err := createLogger(opts.Debug, opts.LogLevel)
	if err != nil {
		return err
	}

	robot := memory.NewRobot(memory.WithCredentials(opts.User, opts.Password))
	srv := &http.Server{
		Handler:           httpbridge.NewHandler(robot, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", opts.Addr, err)
	}
	printSystemMessage(out, "Simulated robot bridge listening on %s", ln.Addr())
	if opts.Ready != nil {
		opts.Ready <- ln.Addr().String()
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown did not complete", "err", err)
		_ = srv.Close()
	}
	if err := <-serverErrors; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if sig := interruptedBy(ctx); sig != nil {
		printSystemMessage(out, "Received %s, shutting down.", sig)
	}
	printSystemMessage(out, "Bridge stopped.")
	return nil
}
