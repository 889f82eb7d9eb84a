package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"finance-assistant/internal/config"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

var ErrMigrationsNotFound = errors.New("migrations directory not found")

// MigrationRunner applies the versioned SQL schema and optional seed files to postgres.
type MigrationRunner struct {
	db  *sql.DB
	cfg config.MigrationConfig
}

func NewMigrationRunner(db *sql.DB, cfg config.MigrationConfig) *MigrationRunner {
	if cfg.ReadyAttempts < 1 {
		cfg.ReadyAttempts = 1
	}
	return &MigrationRunner{db: db, cfg: cfg}
}

// OpenMigrationDB opens a plain lib/pq connection outside of gorm.
func OpenMigrationDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	if cfg.Driver != config.DriverPostgres {
		return nil, fmt.Errorf("SQL migrations require the postgres driver, got %q", cfg.Driver)
	}

	db, err := sql.Open("postgres", cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	return db, nil
}

// WaitForDatabase pings until the server answers, the attempts run out or ctx ends.
func (mr *MigrationRunner) WaitForDatabase(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= mr.cfg.ReadyAttempts; attempt++ {
		if lastErr = mr.db.PingContext(ctx); lastErr == nil {
			slog.Info("database is ready", "attempt", attempt)
			return nil
		}
		slog.Warn("database not ready", "attempt", attempt, "max_attempts", mr.cfg.ReadyAttempts, "error", lastErr)

		if attempt == mr.cfg.ReadyAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(mr.cfg.ReadyInterval):
		}
	}
	return fmt.Errorf("database not ready after %d attempts: %w", mr.cfg.ReadyAttempts, lastErr)
}

func (mr *MigrationRunner) hasMigrations() bool {
	info, err := os.Stat(mr.cfg.Dir)
	return err == nil && info.IsDir()
}

func (mr *MigrationRunner) open() (*migrate.Migrate, error) {
	if !mr.hasMigrations() {
		return nil, ErrMigrationsNotFound
	}

	dir, err := filepath.Abs(mr.cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve migrations path: %w", err)
	}

	driver, err := postgres.WithInstance(mr.db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(dir), "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return m, nil
}

// RunMigrations applies every pending up migration, clearing a dirty flag
// left by an interrupted run first. A missing directory is logged and skipped.
func (mr *MigrationRunner) RunMigrations() error {
	m, err := mr.open()
	if errors.Is(err, ErrMigrationsNotFound) {
		slog.Warn("migrations directory not found, skipping", "path", mr.cfg.Dir)
		return nil
	}
	if err != nil {
		return err
	}

	before, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
	case err != nil:
		return fmt.Errorf("failed to get migration version: %w", err)
	case dirty:
		slog.Warn("schema is dirty, forcing version", "version", before)
		if err := m.Force(int(before)); err != nil {
			return fmt.Errorf("failed to force version %d: %w", before, err)
		}
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("schema is up to date", "version", before)
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	after, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to get new migration version: %w", err)
	}
	slog.Info("applied migrations", "from", before, "to", after)
	return nil
}

func (mr *MigrationRunner) RollbackMigrations(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("rollback steps must be positive, got %d", steps)
	}

	m, err := mr.open()
	if err != nil {
		return err
	}

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback failed: %w", err)
	}
	return nil
}

// LoadSeeds executes SeedsDir/*.sql in name order when seeding is enabled.
// A failing file is logged and skipped so later files still run.
func (mr *MigrationRunner) LoadSeeds() error {
	if !mr.cfg.LoadSeeds {
		slog.Debug("seed loading disabled")
		return nil
	}

	files, err := filepath.Glob(filepath.Join(mr.cfg.SeedsDir, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to list seed files: %w", err)
	}
	if len(files) == 0 {
		slog.Info("no seed files found", "path", mr.cfg.SeedsDir)
		return nil
	}

	for _, file := range files {
		script, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read seed file %s: %w", file, err)
		}

		if _, err := mr.db.Exec(string(script)); err != nil {
			slog.Warn("seed file failed", "file", filepath.Base(file), "error", err)
			continue
		}
		slog.Info("seed file applied", "file", filepath.Base(file))
	}
	return nil
}

func (mr *MigrationRunner) GetMigrationStatus() (version uint, dirty bool, err error) {
	m, err := mr.open()
	if err != nil {
		return 0, false, err
	}
	return m.Version()
}

// RunMigrationsIfEnabled is the AUTO_MIGRATE path taken at startup. The
// boolean reports whether the SQL migrations were attempted at all.
func RunMigrationsIfEnabled(ctx context.Context, db *sql.DB, cfg config.MigrationConfig) (bool, error) {
	if !cfg.AutoMigrate {
		slog.Info("auto-migration disabled")
		return false, nil
	}

	runner := NewMigrationRunner(db, cfg)
	if !runner.hasMigrations() {
		slog.Warn("AUTO_MIGRATE set but migrations directory is missing", "path", cfg.Dir)
		return false, nil
	}

	if err := runner.WaitForDatabase(ctx); err != nil {
		return true, fmt.Errorf("database readiness check failed: %w", err)
	}
	if err := runner.RunMigrations(); err != nil {
		return true, fmt.Errorf("migration execution failed: %w", err)
	}
	if err := runner.LoadSeeds(); err != nil {
		slog.Warn("seed loading failed", "error", err)
	}
	return true, nil
}
