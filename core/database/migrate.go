package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/m3rciful/proverbbot/core/logger"
)

// Direction selects which way RunMigrations moves the schema.
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "up"
}

// RunMigrations applies the *.sql files found at the root of migrations.
// Down rolls back a single step.
func RunMigrations(ctx context.Context, cfg Config, migrations fs.FS, dir Direction) error {
	if err := WaitForPostgres(ctx, cfg, 30*time.Second); err != nil {
		logger.Error(ctx, logger.CompMigrate, "db.wait",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("database not ready: %w", err)
	}

	src, err := iofs.New(migrations, ".")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.URL())
	if err != nil {
		logger.Error(ctx, logger.CompMigrate, "init",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("initialize migrations: %w", err)
	}
	defer m.Close()

	fromVer, _, _ := m.Version()
	start := time.Now()
	if dir == Down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error(ctx, logger.CompMigrate, "apply",
			slog.String("status", "fail"),
			slog.String("mode", dir.String()),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("migrate %s: %w", dir, err)
	}
	toVer, dirty, _ := m.Version()

	logger.Info(ctx, logger.CompMigrate, "summary",
		slog.String("status", "ok"),
		slog.String("mode", dir.String()),
		slog.Uint64("from_ver", uint64(fromVer)),
		slog.Uint64("to_ver", uint64(toVer)),
		slog.Bool("dirty", dirty),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}
