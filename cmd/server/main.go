package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"taskTracker/internal/config"
	"taskTracker/internal/control"
	"taskTracker/internal/db"
	grpcserver "taskTracker/internal/grpc"
	"taskTracker/internal/logger"
	"taskTracker/internal/server"
	"taskTracker/internal/service"
	"taskTracker/repository"
)

var (
	hostFlag string
	portFlag int
	dbFlag   string
)

var rootCmd = &cobra.Command{
	Use:           "server",
	Short:         "Multi-user task server",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cmd.Flags().Changed("host") {
			cfg.Server.Host = hostFlag
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = portFlag
		}
		if cmd.Flags().Changed("db") {
			cfg.Database.Path = dbFlag
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return run(cfg)
	},
}

func init() {
	rootCmd.Flags().StringVar(&hostFlag, "host", "", "Bind address (IPv4 or IPv6 literal), overrides SERVER_HOST")
	rootCmd.Flags().IntVar(&portFlag, "port", 0, "TCP port, overrides SERVER_PORT")
	rootCmd.Flags().StringVar(&dbFlag, "db", "", "SQLite database file, overrides DB_PATH")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	log.Info("configuration loaded", zap.Stringer("config", cfg))

	// Open DB
	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.Warn("close db", zap.Error(err))
		}
	}()

	svc := service.New(repository.NewUserRepository(d), repository.NewTaskRepository(d), log.Named("service"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional gRPC health endpoint, fed by the listener state.
	var health *grpcserver.Health
	opts := server.Options{
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxFrameSize:   cfg.Server.MaxFrameSize,
		MaxConnections: cfg.Server.MaxConnections,
	}
	if cfg.GRPC.Address != "" {
		health, err = grpcserver.StartGRPC(cfg.GRPC.Address, log.Named("grpc"))
		if err != nil {
			return fmt.Errorf("start grpc: %w", err)
		}
		opts.OnStateChange = health.SetTaskServing
	}

	srv := server.New(server.NewDispatcher(svc, log.Named("dispatch")), log.Named("server"), opts)

	var shutdownControl func(context.Context) error
	if cfg.Control.Address != "" {
		shutdownControl, err = control.New(ctx, srv, log.Named("control")).Serve(cfg.Control.Address)
		if err != nil {
			return fmt.Errorf("start control api: %w", err)
		}
	}

	if cfg.Server.AutoStart {
		if err := srv.Start(ctx, cfg.Server.Host, cfg.Server.Port); err != nil {
			return fmt.Errorf("start task server: %w", err)
		}
	} else if shutdownControl == nil {
		log.Warn("autostart disabled and no control API configured; the task server can never be started")
	}

	// Wait for signal
	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownControl != nil {
		if err := shutdownControl(shutdownCtx); err != nil {
			log.Warn("control api shutdown", zap.Error(err))
		}
	}
	if err := srv.Stop(); err != nil {
		log.Warn("task server shutdown", zap.Error(err))
	}
	if health != nil {
		if err := health.Shutdown(shutdownCtx); err != nil {
			log.Warn("grpc shutdown", zap.Error(err))
		}
	}
	return nil
}
