package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rehabmetrics/handrom/internal/assessment"
	"github.com/rehabmetrics/handrom/internal/config"
	"github.com/rehabmetrics/handrom/internal/server"
	"github.com/rehabmetrics/handrom/internal/store"
)

func newServeCommand(configFlag *string) *cobra.Command {
	var bindFlag string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the assessment HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFlag)
			if err != nil {
				return err
			}
			if bindFlag != "" {
				cfg.Server.Bind = bindFlag
			}

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)

			engineCfg, err := cfg.EngineConfig()
			if err != nil {
				return err
			}
			engineCfg.Logger = logger

			if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0o755); err != nil {
				return fmt.Errorf("create data directory: %w", err)
			}

			st, err := store.New(cfg.Storage.DBPath)
			if err != nil {
				return fmt.Errorf("initialize store: %w", err)
			}
			defer st.Close()

			srv := server.New(server.Config{
				StaticDir: cfg.Server.StaticDir,
				Store:     st,
				Engine:    assessment.New(engineCfg),
			})

			logger.Info("starting server", "bind", cfg.Server.Bind, "db", cfg.Storage.DBPath)
			return srv.ListenAndServe(cfg.Server.Bind)
		},
	}

	cmd.Flags().StringVar(&bindFlag, "bind", "", "Listen address (overrides config)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}
