package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vigil/internal/app/server"
	"vigil/internal/app/server/config"
	"vigil/internal/utils/logger"
)

var (
	cfgFile string
	addr    string
)

var rootCmd = &cobra.Command{
	Use:          "vigil-server",
	Short:        "Vigil coordination service",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if addr != "" {
			cfg.Server.RunAddress = addr
		}

		log := logger.New(cfg.Env, cfg.Logger.Level)
		log.Info("starting vigil server", "env", cfg.Env, "replicas", len(cfg.Replication.Replicas))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := server.New(ctx, cfg, log, server.Options{})
		if err != nil {
			return fmt.Errorf("init: %w", err)
		}
		defer app.Close()

		return app.Run(ctx)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml)")
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides RUN_ADDRESS")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
