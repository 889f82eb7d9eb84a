package main

import (
	"fmt"
	"log/slog"
	"time"

	"finance-assistant/internal/repositories"
	"finance-assistant/internal/services"

	"github.com/spf13/cobra"
)

func seedDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-demo",
		Short: "Fill an existing user's account with generated transactions",
		Long: `Generate income and expense history for a registered user so the dashboard has data to show.

Transactions are spread over the given number of months ending today.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, _ := cmd.Flags().GetString("email")
			months, _ := cmd.Flags().GetInt("months")
			seed, _ := cmd.Flags().GetInt64("seed")

			if email == "" {
				return fmt.Errorf("--email is required")
			}

			db, err := openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			demo := services.NewDemoDataService(
				repositories.NewUserRepository(db.DB),
				repositories.NewCategoryRepository(db.DB),
				repositories.NewTransactionRepository(db.DB),
				seed,
			)

			created, err := demo.SeedUser(cmd.Context(), email, months, time.Now())
			if err != nil {
				return err
			}

			slog.Info("demo data created", "email", email, "months", months, "transactions", created)
			return nil
		},
	}

	cmd.Flags().String("email", "", "email of the user to seed")
	cmd.Flags().Int("months", 6, "number of months of history to generate")
	cmd.Flags().Int64("seed", 0, "random seed; 0 picks one from the clock")

	return cmd
}
