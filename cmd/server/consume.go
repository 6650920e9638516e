package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/iliyamo/airline-reservation/internal/queue"
)

func consumeCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Append reservation events to the audit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if cfg.RabbitMQURL == "" {
				return errors.New("RABBITMQ_URL is required for consume")
			}
			if dir == "" {
				dir = cfg.AuditLogDir
			}
			log.Info("audit consumer starting", "dir", dir)
			return queue.StartAuditConsumer(cmd.Context(), cfg.RabbitMQURL, dir, log)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "audit log directory (default AUDIT_LOG_DIR)")
	return cmd
}
