package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"finance-assistant/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func migrationConfig(t *testing.T) config.MigrationConfig {
	t.Helper()
	return config.MigrationConfig{
		Dir:           filepath.Join(t.TempDir(), "missing-migrations"),
		SeedsDir:      t.TempDir(),
		ReadyAttempts: 3,
		ReadyInterval: 10 * time.Millisecond,
	}
}

func pingMock(t *testing.T) (sqlmock.Sqlmock, *MigrationRunner, config.MigrationConfig) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := migrationConfig(t)
	return mock, NewMigrationRunner(db, cfg), cfg
}

func writeSeed(t *testing.T, dir, name, script string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(script), 0o644))
}

func TestWaitForDatabase(t *testing.T) {
	tests := []struct {
		name    string
		pings   []error
		wantErr bool
	}{
		{"ready at once", []error{nil}, false},
		{"ready on the last attempt", []error{errors.New("connection refused"), errors.New("the database system is starting up"), nil}, false},
		{"never ready", []error{errors.New("refused"), errors.New("refused"), errors.New("refused")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, runner, _ := pingMock(t)
			for _, pingErr := range tt.pings {
				mock.ExpectPing().WillReturnError(pingErr)
			}

			err := runner.WaitForDatabase(context.Background())

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "not ready after 3 attempts")
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestWaitForDatabase_StopsOnCancel(t *testing.T) {
	mock, runner, _ := pingMock(t)
	runner.cfg.ReadyInterval = time.Hour
	mock.ExpectPing().WillReturnError(errors.New("refused"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := runner.WaitForDatabase(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewMigrationRunner_AtLeastOneAttempt(t *testing.T) {
	runner := NewMigrationRunner(nil, config.MigrationConfig{})
	assert.Equal(t, 1, runner.cfg.ReadyAttempts)
}

func TestMigrations_MissingDirectory(t *testing.T) {
	_, runner, _ := pingMock(t)

	assert.NoError(t, runner.RunMigrations())

	_, _, err := runner.GetMigrationStatus()
	assert.ErrorIs(t, err, ErrMigrationsNotFound)

	assert.ErrorIs(t, runner.RollbackMigrations(1), ErrMigrationsNotFound)
	assert.Error(t, runner.RollbackMigrations(0))
}

func TestLoadSeeds(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		cfg := migrationConfig(t)
		writeSeed(t, cfg.SeedsDir, "001_demo.sql", "INSERT INTO categories VALUES (1);")

		require.NoError(t, NewMigrationRunner(db, cfg).LoadSeeds())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty directory", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		cfg := migrationConfig(t)
		cfg.LoadSeeds = true

		require.NoError(t, NewMigrationRunner(db, cfg).LoadSeeds())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("runs files in order and skips failures", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		cfg := migrationConfig(t)
		cfg.LoadSeeds = true
		writeSeed(t, cfg.SeedsDir, "002_transactions.sql", "INSERT INTO transactions (id) VALUES ('t1');")
		writeSeed(t, cfg.SeedsDir, "001_categories.sql", "INSERT INTO categories (name) VALUES ('Pets');")
		writeSeed(t, cfg.SeedsDir, "README.md", "not sql")

		mock.ExpectExec("INSERT INTO categories").WillReturnError(errors.New("duplicate key value"))
		mock.ExpectExec("INSERT INTO transactions").WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewMigrationRunner(db, cfg).LoadSeeds())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unreadable file", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		cfg := migrationConfig(t)
		cfg.LoadSeeds = true
		require.NoError(t, os.Mkdir(filepath.Join(cfg.SeedsDir, "003_dir.sql"), 0o755))

		err = NewMigrationRunner(db, cfg).LoadSeeds()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read seed file")
	})
}

func TestRunMigrationsIfEnabled(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		_, _, cfg := pingMock(t)

		ran, err := RunMigrationsIfEnabled(context.Background(), nil, cfg)
		assert.NoError(t, err)
		assert.False(t, ran)
	})

	t.Run("missing directory falls back", func(t *testing.T) {
		_, _, cfg := pingMock(t)
		cfg.AutoMigrate = true

		ran, err := RunMigrationsIfEnabled(context.Background(), nil, cfg)
		assert.NoError(t, err)
		assert.False(t, ran)
	})

	t.Run("database never ready", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()

		cfg := migrationConfig(t)
		cfg.AutoMigrate = true
		cfg.ReadyAttempts = 2
		cfg.Dir = t.TempDir()
		for i := 0; i < cfg.ReadyAttempts; i++ {
			mock.ExpectPing().WillReturnError(errors.New("refused"))
		}

		ran, err := RunMigrationsIfEnabled(context.Background(), db, cfg)
		assert.True(t, ran)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database readiness check failed")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOpenMigrationDB_RequiresPostgres(t *testing.T) {
	_, err := OpenMigrationDB(&config.DatabaseConfig{Driver: config.DriverSQLite})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "require the postgres driver")

	db, err := OpenMigrationDB(&config.DatabaseConfig{
		Driver: config.DriverPostgres, Host: "localhost", Port: "5432",
		User: "finance", Password: "secret", Name: "finance_db", SSLMode: "disable",
	})
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}
