// Package store persists collector output: relational upserts keyed by
// conflict columns for downstream analytics, and parquet snapshots of each
// day's bond valuations.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const (
	TableGiltPrices          = "gilt_market_prices"
	TableCorporateBondPrices = "corporate_bond_prices"
	TableSeriesObservations  = "series_observations"
)

type Postgres struct {
	pool *pgxpool.Pool
	log  logrus.FieldLogger
}

func NewPostgres(ctx context.Context, dsn string, log logrus.FieldLogger) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	return &Postgres{pool: pool, log: log}, nil
}

func (s *Postgres) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// buildUpsertSQL renders the insert-or-update statement used for every
// table here: rows are keyed by the conflict columns and every other
// column is overwritten from the incoming row, refreshing updated_at.
func buildUpsertSQL(table string, columns, conflict []string) string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	isKey := map[string]bool{}
	for _, c := range conflict {
		isKey[c] = true
	}

	var updates []string
	for _, c := range columns {
		if !isKey[c] {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
		}
	}
	updates = append(updates, "updated_at = CURRENT_TIMESTAMP")

	return fmt.Sprintf(
		"INSERT INTO %s (%s, updated_at) VALUES (%s, CURRENT_TIMESTAMP) ON CONFLICT (%s) DO UPDATE SET %s",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(conflict, ", "),
		strings.Join(updates, ", "),
	)
}

// UpsertBatch writes all rows in a single pipelined batch and returns how
// many succeeded. A failed row does not abort the rest; the first error is
// returned alongside the count so the caller can decide whether a partial
// batch is fatal.
func (s *Postgres) UpsertBatch(ctx context.Context, table string, columns []string, rows [][]any, conflict []string) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	sql := buildUpsertSQL(table, columns, conflict)

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(sql, row...)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	stored := 0
	var firstErr error
	for range rows {
		if _, err := results.Exec(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		stored++
	}

	if firstErr != nil {
		s.log.WithError(firstErr).WithFields(logrus.Fields{
			"table":  table,
			"stored": stored,
			"total":  len(rows),
		}).Warn("partial upsert")
	}

	return stored, firstErr
}
