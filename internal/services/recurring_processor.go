package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"finance-assistant/internal/events"
	"finance-assistant/internal/models"
	"finance-assistant/internal/repositories"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultRecurringMaxCatchUp = 366
	recurringBatchSize         = 500
	recurringWorkers           = 4
)

// RecurringProcessor turns due recurring schedules into ordinary transactions.
type RecurringProcessor struct {
	transactionRepo repositories.TransactionRepositoryInterface
	publisher       events.Publisher
	metrics         MetricsRecorderInterface
	logger          *slog.Logger
	maxCatchUp      int
}

func NewRecurringProcessor(
	transactionRepo repositories.TransactionRepositoryInterface,
	publisher events.Publisher,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
	maxCatchUp int,
) RecurringProcessorInterface {
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if maxCatchUp <= 0 {
		maxCatchUp = DefaultRecurringMaxCatchUp
	}

	return &RecurringProcessor{
		transactionRepo: transactionRepo,
		publisher:       publisher,
		metrics:         metrics,
		logger:          logger,
		maxCatchUp:      maxCatchUp,
	}
}

// Run processes due schedules once immediately and then on every tick until ctx is cancelled.
func (p *RecurringProcessor) Run(ctx context.Context, interval time.Duration) {
	p.logger.Info("starting recurring processor", slog.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := p.ProcessDue(ctx, time.Now()); err != nil && ctx.Err() == nil {
			p.logger.Error("recurring run failed", slog.String("error", err.Error()))
		}

		select {
		case <-ctx.Done():
			p.logger.Info("recurring processor stopped")
			return
		case <-ticker.C:
		}
	}
}

// ProcessDue materialises every occurrence due on or before now's calendar date and returns how
// many transactions were created. A failing schedule is logged and skipped; the returned error
// joins all such failures.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	startTime := time.Now()
	defer func() {
		p.metrics.RecordProcessingTime(MetricRecurringDuration, time.Since(startTime))
	}()

	today := models.DateOf(now.UTC())

	templates, err := p.transactionRepo.GetDueRecurring(today, recurringBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to load due recurring transactions: %w", err)
	}
	p.metrics.RecordGauge(MetricRecurringDue, float64(len(templates)), nil)

	if len(templates) == 0 {
		return 0, nil
	}

	var (
		generated atomic.Int64
		mu        sync.Mutex
		failures  []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(recurringWorkers)

	for i := range templates {
		template := &templates[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			created, err := p.processTemplate(gctx, template, today)
			if err != nil {
				p.logger.Error("failed to process recurring transaction",
					slog.String("transaction_id", template.ID.String()),
					slog.String("error", err.Error()),
				)
				mu.Lock()
				failures = append(failures, fmt.Errorf("recurring transaction %s: %w", template.ID, err))
				mu.Unlock()
				return nil
			}

			generated.Add(int64(created))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(generated.Load()), err
	}

	total := int(generated.Load())
	p.logger.Info("recurring run complete",
		slog.Int("due", len(templates)),
		slog.Int("generated", total),
		slog.Int("failed", len(failures)),
	)

	return total, errors.Join(failures...)
}

func (p *RecurringProcessor) processTemplate(ctx context.Context, template *models.Transaction, today models.Date) (int, error) {
	occurrences := p.schedule(template, today)

	if err := p.transactionRepo.SaveOccurrences(template, occurrences); err != nil {
		return 0, err
	}

	for _, occurrence := range occurrences {
		p.metrics.IncrementCounter(MetricRecurringGenerated, nil)
		if err := p.publisher.Publish(ctx, events.NewTransactionEvent(events.TransactionCreated, occurrence)); err != nil {
			p.metrics.IncrementCounter(MetricEventPublishFailed, nil)
			p.logger.Warn("failed to publish recurring occurrence",
				slog.String("transaction_id", occurrence.ID.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	return len(occurrences), nil
}

// schedule builds the occurrences due by today and advances the template past them. At most
// maxCatchUp occurrences are produced per run; the remainder is picked up by later runs.
func (p *RecurringProcessor) schedule(template *models.Transaction, today models.Date) []*models.Transaction {
	if !models.IsValidFrequency(template.Frequency) || template.NextExecutionDate == nil {
		template.IsActive = false
		return nil
	}

	next := *template.NextExecutionDate
	var occurrences []*models.Transaction

	for !next.After(today) && len(occurrences) < p.maxCatchUp {
		if template.EndDate != nil && next.After(*template.EndDate) {
			break
		}
		occurrences = append(occurrences, template.Occurrence(next))
		next = template.NextOccurrence(next)
	}

	template.NextExecutionDate = &next
	if template.EndDate != nil && next.After(*template.EndDate) {
		template.IsActive = false
	}

	return occurrences
}
