package main

import (
	"log/slog"
	"time"

	"finance-assistant/internal/repositories"
	"finance-assistant/internal/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func recurringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Recurring transaction jobs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Materialise every recurring transaction that is due today, then exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := slog.Default()

			db, err := openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			publisher := newPublisher(logger)
			defer publisher.Close()

			processor := services.NewRecurringProcessor(
				repositories.NewTransactionRepository(db.DB),
				publisher,
				services.NewPrometheusMetrics(prometheus.NewRegistry()),
				logger,
				cfg.Recurring.MaxCatchUp,
			)

			created, err := processor.ProcessDue(cmd.Context(), time.Now())
			if err != nil {
				return err
			}

			logger.Info("recurring run complete", "created", created)
			return nil
		},
	})

	return cmd
}
