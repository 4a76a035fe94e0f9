package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/mealink-backend/internal/config"
)

const limiterCleanup = time.Minute

// errDeviceIdentity rejects serving HTTP as a single device user: every
// network client would act as that one user without authenticating.
var errDeviceIdentity = errors.New("identity.mode=device is for local clients; the server requires identity.mode=session")

// checkServerConfig holds the rules that apply to the HTTP server only.
func checkServerConfig(cfg *config.Config) error {
	if cfg.Identity.Mode != config.IdentitySession {
		return errDeviceIdentity
	}
	return nil
}

// Run is the server entry point. It loads configuration, wires the core,
// and serves HTTP until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := checkServerConfig(cfg); err != nil {
		return err
	}

	logger := NewLogger(cfg.Log, "server")
	logger.Info("starting application",
		slog.String("build", Build().String()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("store", cfg.Store.Backend),
		slog.String("identity", cfg.Identity.Mode),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	core, err := NewCore(ctx, cfg, logger, reg)
	if err != nil {
		return fmt.Errorf("init core: %w", err)
	}
	defer core.Close()

	handler, stopLimiter := routes(core, logger, reg)
	defer stopLimiter()

	return serve(ctx, cfg.Server, handler, logger)
}

func serve(ctx context.Context, cfg config.ServerConfig, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
