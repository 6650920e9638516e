package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/airline-reservation/internal/config"
	"github.com/iliyamo/airline-reservation/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "server",
		Short:         "Airline reservation API",
		SilenceUsage:  true,
		SilenceErrors: true,
		// no subcommand runs the API
		RunE: func(cmd *cobra.Command, _ []string) error { return runServe(cmd.Context()) },
	}
	root.AddCommand(serveCmd(), migrateCmd(), consumeCmd())
	return root
}

// setup loads configuration and builds the process logger.
func setup() (config.Config, logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, err
	}
	lc := logger.DefaultConfig()
	lc.Level = logger.ParseLevel(cfg.LogLevel)
	lc.JSON = cfg.LogJSON
	lc.Output = os.Stderr
	log := logger.NewLogger(lc).With("env", cfg.Env)
	return cfg, log, nil
}
