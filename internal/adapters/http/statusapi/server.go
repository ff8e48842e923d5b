package statusapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dorian305/rtls-client/internal/logging"
)

const shutdownTimeout = 3 * time.Second

// Serve listens on addr until ctx ends. The bound address is reported through
// ready, which is useful when addr uses port 0.
func Serve(ctx context.Context, addr string, handler http.Handler, log logging.Logger, ready func(net.Addr)) error {
	if log == nil {
		log = logging.Noop()
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen status api: %w", err)
	}
	if ready != nil {
		ready(listener.Addr())
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(listener)
	}()
	log.Info(ctx, "status api listening", logging.String("addr", listener.Addr().String()))

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve status api: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown status api: %w", err)
	}

	return nil
}
