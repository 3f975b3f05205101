package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hrhelper/recruiter-service/internal/config"
	"hrhelper/recruiter-service/internal/grpcserver"
	"hrhelper/recruiter-service/internal/httpapi"
	"hrhelper/recruiter-service/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

func (c *cli) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the gRPC API and the rescore scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := c.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}

	f := cmd.Flags()
	f.String("port", "8080", "HTTP listen port")
	f.String("grpc-host", "127.0.0.1", "gRPC listen host; the gRPC surface trusts x-user-id")
	f.String("grpc-port", "9090", "gRPC listen port, empty to disable")
	f.String("rescore-schedule", "@every 6h", "cron spec for the rescore job, empty to disable")
	f.Bool("migrate", true, "apply the database schema on start")
	for _, name := range []string{"port", "grpc-host", "grpc-port", "rescore-schedule", "migrate"} {
		_ = c.v.BindPFlag(name, f.Lookup(name))
	}
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	rt, err := open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	// ── HTTP server ──────────────────────────────────────────────────────────
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	h := httpapi.NewHandler(rt.recruiting, rt.identity, log, httpapi.Options{
		Version:        version,
		AllowedOrigins: cfg.AllowedOrigins,
		SecureCookies:  cfg.SecureCookies,
	})
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      h.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("http listening", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// ── gRPC server ──────────────────────────────────────────────────────────
	var stopGRPC func()
	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr())
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		gs := grpcserver.New(rt.recruiting, log)
		go func() {
			log.Info("grpc listening", zap.String("addr", lis.Addr().String()))
			if err := gs.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
		stopGRPC = gs.GracefulStop
	}

	// ── Rescore scheduler ────────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if cfg.RescoreSchedule != "" {
		sched = scheduler.New(rt.recruiting, cfg.RescoreSchedule, cfg.RescoreTimeout, log)
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
	}

	// ── Graceful shutdown ────────────────────────────────────────────────────
	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case runErr = <-errCh:
		log.Error("server failed", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown error", zap.Error(err))
	}
	if stopGRPC != nil {
		stopGRPC()
	}
	if sched != nil {
		sched.Stop()
	}
	log.Info("stopped")
	return runErr
}
