package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"finance-assistant/internal/config"
	"finance-assistant/internal/database"
	"finance-assistant/internal/events"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	envFile string
	cfg     *config.Config
	rootCmd = &cobra.Command{
		Use:               "finance-assistant",
		Short:             "Personal finance tracking API",
		Long:              "finance-assistant serves the transactions, categories and dashboard API and runs its maintenance jobs.",
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(recurringCmd())
	rootCmd.AddCommand(seedDemoCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	// a missing .env is fine; real environment variables still apply
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg = loaded

	setupLogging(&cfg.Logging)
	return nil
}

func setupLogging(logging *config.LoggingConfig) {
	opts := &slog.HandlerOptions{Level: logging.SlogLevel()}

	var handler slog.Handler
	switch logging.Format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// openDatabase connects and brings the schema up to date.
func openDatabase(ctx context.Context) (*database.DB, error) {
	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

// newPublisher returns an AMQP publisher behind a circuit breaker, or a no-op publisher
// when AMQP_URL is unset or the broker cannot be reached.
func newPublisher(logger *slog.Logger) events.Publisher {
	if cfg.Events.AMQPURL == "" {
		logger.Info("event publishing disabled")
		return events.NewNopPublisher()
	}

	publisher, err := events.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange, logger)
	if err != nil {
		logger.Warn("failed to connect to message broker, events disabled", "error", err)
		return events.NewNopPublisher()
	}

	logger.Info("publishing transaction events", "exchange", cfg.Events.Exchange)
	return events.NewBreakerPublisher(publisher, events.DefaultBreakerConfig(), logger)
}
