package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ukydev/fleet-fuel-audit/internal/handlers"
	"github.com/ukydev/fleet-fuel-audit/internal/middleware"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the fuel reconciliation HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(a, cfg.Server.RateLimit, cfg.Server.RateBurst),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ln, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			return eris.Wrap(err, "server listen")
		}

		log.WithField("port", port).Info("HTTP server listening")
		return serveUntilDone(ctx, srv, ln, shutdownGrace)
	},
}

const shutdownGrace = 10 * time.Second

// serveUntilDone serves on ln until ctx is cancelled, then drains in-flight
// requests. It returns only once Shutdown has finished, so deferred resource
// cleanup never races a running handler.
func serveUntilDone(ctx context.Context, srv *http.Server, ln net.Listener, grace time.Duration) error {
	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "server serve")
	}
	if err := <-shutdownErr; err != nil {
		return eris.Wrap(err, "server shutdown")
	}
	return nil
}

func newRouter(a *app, rps float64, burst int) http.Handler {
	mux := http.NewServeMux()
	h := handlers.NewFuelHandler(a.engine, a.submitter, a.loc, log.StandardLogger())
	if a.journal != nil {
		h.WithHistory(a.journal)
	}
	h.Register(mux)

	limiter := middleware.NewRateLimitMiddleware(rps, burst)
	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.RequestLogger(log.StandardLogger()),
		limiter.RateLimit,
	)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
