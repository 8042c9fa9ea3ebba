package router

import (
	"context"
	"fmt"
	"math/big"

	"twapRouter/internal/oracle/tickmath"
)

const bpsDenominator = 10000

// deriveOutputMinimum folds the oracle quote forward across the hops,
// seeding with amountIn, then discounts the final quote by the
// configured slippage. Each hop gets its own fresh quote; rounding
// compounds per hop rather than being computed end to end, matching
// the quote engine's own convention.
func (r *Router) deriveOutputMinimum(ctx context.Context, hops []resolvedHop, amountIn *big.Int, slippageBps uint32) (*big.Int, error) {
	amount := new(big.Int).Set(amountIn)
	for _, hop := range hops {
		quoted, err := r.oracle.Consult(ctx, hop.in, hop.out, hop.fee, amount)
		if err != nil {
			return nil, fmt.Errorf("consult %s->%s: %w", hop.in.Hex(), hop.out.Hex(), err)
		}
		if quoted.Cmp(tickmath.MaxQuoteAmount) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrAmountTooLarge, quoted)
		}
		amount = quoted
	}

	bound := applyBps(amount, bpsDenominator-int64(slippageBps))
	if bound.Sign() == 0 {
		return nil, ErrBoundIsZero
	}
	return bound, nil
}

// deriveInputMaximum folds the oracle quote backward from the last hop,
// seeding with amountOut and consulting each hop with the direction
// swapped so the quote mirrors the physical flow, then pads the final
// quote by the configured slippage.
func (r *Router) deriveInputMaximum(ctx context.Context, hops []resolvedHop, amountOut *big.Int, slippageBps uint32) (*big.Int, error) {
	amount := new(big.Int).Set(amountOut)
	for i := len(hops) - 1; i >= 0; i-- {
		hop := hops[i]
		quoted, err := r.oracle.Consult(ctx, hop.out, hop.in, hop.fee, amount)
		if err != nil {
			return nil, fmt.Errorf("consult %s->%s: %w", hop.out.Hex(), hop.in.Hex(), err)
		}
		if quoted.Cmp(tickmath.MaxQuoteAmount) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrAmountTooLarge, quoted)
		}
		amount = quoted
	}

	bound := applyBps(amount, bpsDenominator+int64(slippageBps))
	if bound.Sign() == 0 {
		return nil, ErrBoundIsZero
	}
	return bound, nil
}

// applyBps computes floor(amount * numerBps / 10000), multiplying
// before dividing so no precision is lost ahead of the single floor.
func applyBps(amount *big.Int, numerBps int64) *big.Int {
	out := new(big.Int).Mul(amount, big.NewInt(numerBps))
	return out.Quo(out, big.NewInt(bpsDenominator))
}
