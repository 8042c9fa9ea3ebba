// Package journal records executed swaps and issued quotes. It is
// observational only; a failed write never fails a swap.
package journal

import (
	"context"

	"twapRouter/internal/model"
)

// Journal is a sink for swap and quote records.
type Journal interface {
	RecordSwap(ctx context.Context, record model.SwapRecord) error
	RecordQuote(ctx context.Context, record model.QuoteRecord) error
}

// Multi fans records out to several journals, returning the first
// error after attempting all of them.
type Multi []Journal

func (m Multi) RecordSwap(ctx context.Context, record model.SwapRecord) error {
	var first error
	for _, j := range m {
		if err := j.RecordSwap(ctx, record); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m Multi) RecordQuote(ctx context.Context, record model.QuoteRecord) error {
	var first error
	for _, j := range m {
		if err := j.RecordQuote(ctx, record); err != nil && first == nil {
			first = err
		}
	}
	return first
}
