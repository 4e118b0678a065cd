package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/proverbbot/core/logger"
)

const (
	selectProverbsQuery = `SELECT id, proverb, translation, wisdom FROM proverbs ORDER BY id`
	countProverbsQuery  = `SELECT COUNT(*) FROM proverbs`
	insertProverbQuery  = `INSERT INTO proverbs (id, proverb, translation, wisdom)
VALUES (:id, :proverb, :translation, :wisdom)
ON CONFLICT (id) DO NOTHING`
)

// Postgres loads records from the proverbs table.
type Postgres struct {
	DB *sqlx.DB
}

// Load implements Source.
func (p Postgres) Load(ctx context.Context) ([]Record, error) {
	if p.DB == nil {
		return nil, fmt.Errorf("postgres source: nil db")
	}
	start := time.Now()
	var records []Record
	if err := p.DB.SelectContext(ctx, &records, selectProverbsQuery); err != nil {
		logger.Error(ctx, logger.CompDB, "proverbs.load",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("select proverbs: %w", err)
	}
	logger.Info(ctx, logger.CompDB, "proverbs.load",
		slog.String("status", "ok"),
		slog.Int("count", len(records)),
		slog.Duration("duration", logger.Took(start)),
	)
	return records, nil
}

// Seed inserts records missing from the proverbs table and returns how many
// rows were written. Existing ids are left untouched.
func Seed(ctx context.Context, db *sqlx.DB, records []Record) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("seed proverbs: nil db")
	}
	start := time.Now()
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	inserted := 0
	for _, r := range records {
		res, err := tx.NamedExecContext(ctx, insertProverbQuery, r)
		if err != nil {
			_ = tx.Rollback()
			logger.Error(ctx, logger.CompSeed, "proverbs.seed",
				slog.String("status", "fail"),
				slog.Int64("proverb_id", r.ID),
				slog.String("err", err.Error()),
			)
			return 0, fmt.Errorf("insert proverb %d: %w", r.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	logger.Info(ctx, logger.CompSeed, "proverbs.seed",
		slog.String("status", "ok"),
		slog.Int("count", inserted),
		slog.Int("total", len(records)),
		slog.Duration("duration", logger.Took(start)),
	)
	return inserted, nil
}

// Count returns the number of rows in the proverbs table.
func Count(ctx context.Context, db *sqlx.DB) (int, error) {
	var n int
	if err := db.GetContext(ctx, &n, countProverbsQuery); err != nil {
		return 0, fmt.Errorf("count proverbs: %w", err)
	}
	return n, nil
}
