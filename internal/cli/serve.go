package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bfcwefc/msme-desk/internal/config"
	"github.com/bfcwefc/msme-desk/internal/db"
	"github.com/bfcwefc/msme-desk/internal/logging"
	"github.com/bfcwefc/msme-desk/internal/web"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the REST API server. Settings come from DESK_* environment variables or a .env file; --port and --db override them.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "port to listen on (default: DESK_PORT or 5001)")

	return cmd
}

func runServe(ctx context.Context, port string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Port = port
	}

	logger, err := logging.Setup(cfg.DevMode)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	path := flagDB
	if path == "" {
		path = cfg.DBPath
	}
	if path == "" {
		if path, err = db.DefaultPath(); err != nil {
			return err
		}
	}

	database, err := db.Open(path)
	if err != nil {
		return err
	}
	defer closeDB(database)
	logger.Info("database opened", zap.String("path", path))

	srv, err := web.NewServer(database, web.Options{
		UploadDir:      cfg.UploadDir,
		CORSOrigins:    cfg.CORSOrigins,
		StatsTTL:       cfg.StatsTTL,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx, cfg.Port)
}
