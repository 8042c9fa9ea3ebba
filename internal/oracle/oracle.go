// Package oracle quotes time-weighted average prices for registered
// pairs. The price is the mean tick over a trailing window, read from
// the pool's own observation history, which makes it expensive to
// manipulate within a single block.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"twapRouter/internal/engine"
	"twapRouter/internal/oracle/tickmath"
	"twapRouter/internal/registry"
)

// MaxWindowSec is the pool engine's maximum observation look-back
// (9 days).
const MaxWindowSec = uint32(9 * 24 * 60 * 60)

var (
	ErrIdenticalAssets    = errors.New("assetIn and assetOut are identical")
	ErrInvalidAmount      = errors.New("amountIn must be greater than zero")
	ErrAmountTooLarge     = errors.New("amount exceeds quote engine range")
	ErrIntervalOutOfRange = errors.New("window outside allowed interval")
	ErrNotOwner           = errors.New("caller is not the owner")
)

// Oracle consults pool observations for directional TWAP quotes.
type Oracle struct {
	reg      *registry.Registry
	observer engine.Observer
	owner    common.Address
	logger   *zap.Logger

	mu        sync.RWMutex
	windowSec uint32
}

// New builds an oracle over the registry's pools.
func New(reg *registry.Registry, observer engine.Observer, owner common.Address, windowSec uint32, logger *zap.Logger) (*Oracle, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is nil")
	}
	if observer == nil {
		return nil, fmt.Errorf("observer is nil")
	}
	if windowSec == 0 || windowSec > MaxWindowSec {
		return nil, fmt.Errorf("%w: %d", ErrIntervalOutOfRange, windowSec)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Oracle{
		reg:       reg,
		observer:  observer,
		owner:     owner,
		windowSec: windowSec,
		logger:    logger,
	}, nil
}

// Window returns the current observation window in seconds.
func (o *Oracle) Window() uint32 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.windowSec
}

// SetWindow updates the observation window for all subsequent Consult
// calls. Owner-gated; the window must be positive and within the pool
// engine's maximum look-back.
func (o *Oracle) SetWindow(caller common.Address, windowSec uint32) error {
	if caller != o.owner {
		return ErrNotOwner
	}
	if windowSec == 0 || windowSec > MaxWindowSec {
		return fmt.Errorf("%w: %d", ErrIntervalOutOfRange, windowSec)
	}

	o.mu.Lock()
	o.windowSec = windowSec
	o.mu.Unlock()

	o.logger.Info("oracle window updated", zap.Uint32("window_sec", windowSec))
	return nil
}

// GetPool exposes the registry lookup without committing to a failure:
// it returns the zero address for unregistered pairs.
func (o *Oracle) GetPool(tokenA, tokenB common.Address, fee uint32) common.Address {
	return o.reg.LookupPool(tokenA, tokenB, fee)
}

// Consult quotes amountIn of assetIn in units of assetOut at the mean
// tick over the configured window. The result is deterministic for a
// fixed chain state but shifts as the window rolls forward.
func (o *Oracle) Consult(ctx context.Context, assetIn, assetOut common.Address, fee uint32, amountIn *big.Int) (*big.Int, error) {
	if assetIn == assetOut {
		return nil, ErrIdenticalAssets
	}
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if amountIn.Cmp(tickmath.MaxQuoteAmount) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrAmountTooLarge, amountIn)
	}

	pool, err := o.reg.RequirePool(assetIn, assetOut, fee)
	if err != nil {
		return nil, err
	}

	windowSec := o.Window()
	meanTick, err := o.observer.ObserveMeanTick(ctx, pool, windowSec)
	if err != nil {
		return nil, fmt.Errorf("observe pool %s: %w", pool.Hex(), err)
	}

	quote, err := tickmath.QuoteAtTick(meanTick, amountIn, assetIn, assetOut)
	if err != nil {
		return nil, fmt.Errorf("quote at tick %d: %w", meanTick, err)
	}
	return quote, nil
}
