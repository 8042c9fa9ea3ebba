// Package postgres persists swap and quote records.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"twapRouter/internal/model"
)

// Store provides Postgres persistence for the journal.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// RecordSwap inserts one swap record.
func (s *Store) RecordSwap(ctx context.Context, record model.SwapRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO swaps (
			mode, caller, path, fees, amount_fixed, bound, bound_source,
			amount, deadline, outcome, error, executed_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now())
	`,
		record.Mode,
		record.Caller,
		record.Path,
		record.Fees,
		record.AmountFixed,
		record.Bound,
		record.BoundSource,
		record.Amount,
		record.Deadline,
		record.Outcome,
		record.Error,
		record.ExecutedAt,
	)
	return err
}

// RecordQuote inserts one quote record.
func (s *Store) RecordQuote(ctx context.Context, record model.QuoteRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO quotes (
			asset_in, asset_out, fee, amount_in, amount_out, window_sec, quoted_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,now())
	`,
		record.AssetIn,
		record.AssetOut,
		record.Fee,
		record.AmountIn,
		record.AmountOut,
		record.WindowSec,
		record.QuotedAt,
	)
	return err
}

// RecordSwapBatch inserts several swap records in one round trip.
func (s *Store) RecordSwapBatch(ctx context.Context, records []model.SwapRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(`
			INSERT INTO swaps (
				mode, caller, path, fees, amount_fixed, bound, bound_source,
				amount, deadline, outcome, error, executed_at, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now())
		`,
			record.Mode,
			record.Caller,
			record.Path,
			record.Fees,
			record.AmountFixed,
			record.Bound,
			record.BoundSource,
			record.Amount,
			record.Deadline,
			record.Outcome,
			record.Error,
			record.ExecutedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
