// Package router executes single- and multi-hop token exchanges whose
// slippage bounds default to the TWAP oracle's quote. Every public
// swap runs the same sequence: validate, derive bound, settle input,
// build path, execute, settle output, unwrap.
package router

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"twapRouter/internal/engine"
	"twapRouter/internal/model"
	"twapRouter/internal/oracle"
	"twapRouter/internal/oracle/tickmath"
	"twapRouter/internal/registry"
)

var (
	ErrNoHops               = errors.New("hop list is empty")
	ErrDeadlineExpired      = errors.New("deadline expired")
	ErrInvalidAmountIn      = errors.New("invalid amountIn")
	ErrInvalidAmountOut     = errors.New("invalid amountOut")
	ErrInvalidTokens        = errors.New("hop tokens resolve to the same asset")
	ErrInvalidFee           = errors.New("invalid fee tier")
	ErrNativePlacement      = errors.New("native currency allowed only at route endpoints")
	ErrMissingNativeValue   = errors.New("native input requires an attached value")
	ErrAmountTooLarge       = errors.New("amount exceeds quote engine range")
	ErrBoundIsZero          = errors.New("derived bound is zero")
	ErrInsufficientOutput   = errors.New("engine output below minimum")
	ErrNativeTransferFailed = errors.New("native currency transfer failed")
	ErrSlippageOutOfRange   = errors.New("slippage exceeds 10000 bps")
	ErrNotOwner             = errors.New("caller is not the owner")
	ErrReentrantCall        = errors.New("reentrant call")
)

// Journal receives swap records. Recording is observational; the
// router logs journal failures and carries on.
type Journal interface {
	RecordSwap(ctx context.Context, record model.SwapRecord) error
}

// Config wires the router's collaborators.
type Config struct {
	Registry    *registry.Registry
	Oracle      *oracle.Oracle
	Executor    engine.Executor
	ExecutorID  common.Address
	Wrapper     engine.Wrapper
	Backend     engine.TokenBackend
	Self        common.Address
	Owner       common.Address
	SlippageBps uint32
	Journal     Journal
	Logger      *zap.Logger
}

// Router chains oracle quotes across a route and hands the encoded
// path to the external execution engine.
type Router struct {
	reg        *registry.Registry
	oracle     *oracle.Oracle
	executor   engine.Executor
	executorID common.Address
	wrapper    engine.Wrapper
	backend    engine.TokenBackend
	self       common.Address
	owner      common.Address
	journal    Journal
	logger     *zap.Logger
	now        func() time.Time

	mu          sync.RWMutex
	slippageBps uint32

	// entered guards every value-bearing operation. The wrapper and the
	// execution engine can call back into this contract mid-swap; a
	// nested swap would observe stale approval and balance state.
	entered sync.Mutex
}

// New builds a router. The observation window stays owned by the
// oracle; SetWindow here only delegates.
func New(cfg Config) (*Router, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is nil")
	}
	if cfg.Oracle == nil {
		return nil, fmt.Errorf("oracle is nil")
	}
	if cfg.Executor == nil {
		return nil, fmt.Errorf("executor is nil")
	}
	if cfg.Wrapper == nil {
		return nil, fmt.Errorf("wrapper is nil")
	}
	if cfg.Backend == nil {
		return nil, fmt.Errorf("token backend is nil")
	}
	if cfg.SlippageBps > bpsDenominator {
		return nil, fmt.Errorf("%w: %d", ErrSlippageOutOfRange, cfg.SlippageBps)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		reg:         cfg.Registry,
		oracle:      cfg.Oracle,
		executor:    cfg.Executor,
		executorID:  cfg.ExecutorID,
		wrapper:     cfg.Wrapper,
		backend:     cfg.Backend,
		self:        cfg.Self,
		owner:       cfg.Owner,
		slippageBps: cfg.SlippageBps,
		journal:     cfg.Journal,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// SlippageBps returns the configured default slippage.
func (r *Router) SlippageBps() uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.slippageBps
}

// SetSlippageBps updates the default slippage. Owner-gated.
func (r *Router) SetSlippageBps(caller common.Address, bps uint32) error {
	if caller != r.owner {
		return ErrNotOwner
	}
	if bps > bpsDenominator {
		return fmt.Errorf("%w: %d", ErrSlippageOutOfRange, bps)
	}

	r.mu.Lock()
	r.slippageBps = bps
	r.mu.Unlock()

	r.logger.Info("slippage updated", zap.Uint32("slippage_bps", bps))
	return nil
}

// SetWindow delegates to the oracle, which owns the window.
func (r *Router) SetWindow(caller common.Address, windowSec uint32) error {
	return r.oracle.SetWindow(caller, windowSec)
}

// ExactInputParams describes an exact-input swap. AmountOutMinimum nil
// or zero means the bound is derived from the oracle. Value is the
// attached native amount; it is required (and becomes AmountIn) when
// the first hop spends the native currency.
type ExactInputParams struct {
	Caller           common.Address
	Hops             []model.Hop
	AmountIn         *big.Int
	AmountOutMinimum *big.Int
	Value            *big.Int
	Deadline         int64
}

// ExactOutputParams describes an exact-output swap. AmountInMaximum
// nil or zero means the bound is derived from the oracle; for a
// native-currency input the attached Value is the bound.
type ExactOutputParams struct {
	Caller          common.Address
	Hops            []model.Hop
	AmountOut       *big.Int
	AmountInMaximum *big.Int
	Value           *big.Int
	Deadline        int64
}

// SwapExactInput spends exactly AmountIn along the route and returns
// the amount produced. Fails if the engine produces less than the
// caller-supplied or oracle-derived minimum.
func (r *Router) SwapExactInput(ctx context.Context, params ExactInputParams) (*big.Int, error) {
	if !r.entered.TryLock() {
		return nil, ErrReentrantCall
	}
	defer r.entered.Unlock()

	amountOut, bound, boundSource, err := r.swapExactInput(ctx, params)
	r.journalSwap(ctx, "exact_input", params.Caller, params.Hops, params.AmountIn, bound, boundSource, amountOut, params.Deadline, err)
	return amountOut, err
}

// SwapExactOutput produces exactly AmountOut along the route and
// returns the amount spent. Unspent input is refunded to the caller.
func (r *Router) SwapExactOutput(ctx context.Context, params ExactOutputParams) (*big.Int, error) {
	if !r.entered.TryLock() {
		return nil, ErrReentrantCall
	}
	defer r.entered.Unlock()

	amountIn, bound, boundSource, err := r.swapExactOutput(ctx, params)
	r.journalSwap(ctx, "exact_output", params.Caller, params.Hops, params.AmountOut, bound, boundSource, amountIn, params.Deadline, err)
	return amountIn, err
}

// SwapExactInputSingle is the one-hop convenience form of
// SwapExactInput.
func (r *Router) SwapExactInputSingle(ctx context.Context, caller common.Address, assetIn, assetOut model.Asset, fee uint32, amountIn, amountOutMinimum, value *big.Int, deadline int64) (*big.Int, error) {
	return r.SwapExactInput(ctx, ExactInputParams{
		Caller:           caller,
		Hops:             []model.Hop{{In: assetIn, Out: assetOut, Fee: fee}},
		AmountIn:         amountIn,
		AmountOutMinimum: amountOutMinimum,
		Value:            value,
		Deadline:         deadline,
	})
}

// SwapExactOutputSingle is the one-hop convenience form of
// SwapExactOutput.
func (r *Router) SwapExactOutputSingle(ctx context.Context, caller common.Address, assetIn, assetOut model.Asset, fee uint32, amountOut, amountInMaximum, value *big.Int, deadline int64) (*big.Int, error) {
	return r.SwapExactOutput(ctx, ExactOutputParams{
		Caller:          caller,
		Hops:            []model.Hop{{In: assetIn, Out: assetOut, Fee: fee}},
		AmountOut:       amountOut,
		AmountInMaximum: amountInMaximum,
		Value:           value,
		Deadline:        deadline,
	})
}

func (r *Router) swapExactInput(ctx context.Context, params ExactInputParams) (amountOut, bound *big.Int, boundSource string, err error) {
	nativeIn := len(params.Hops) > 0 && params.Hops[0].In.IsNative()
	nativeOut := len(params.Hops) > 0 && params.Hops[len(params.Hops)-1].Out.IsNative()

	amountIn := params.AmountIn
	if nativeIn {
		if params.Value == nil || params.Value.Sign() <= 0 {
			return nil, nil, "", ErrMissingNativeValue
		}
		amountIn = params.Value
	}

	hops, err := r.validate(params.Hops, params.Deadline, amountIn, ErrInvalidAmountIn)
	if err != nil {
		return nil, nil, "", err
	}

	bound = params.AmountOutMinimum
	boundSource = "caller"
	if bound == nil || bound.Sign() == 0 {
		boundSource = "oracle"
		bound, err = r.deriveOutputMinimum(ctx, hops, amountIn, r.SlippageBps())
		if err != nil {
			return nil, nil, "", err
		}
	}

	if err := r.settleInput(ctx, hops[0].in, nativeIn, params.Caller, amountIn); err != nil {
		return nil, bound, boundSource, err
	}

	path, err := encodePath(hops, false)
	if err != nil {
		return nil, bound, boundSource, err
	}

	recipient := params.Caller
	if nativeOut {
		recipient = r.self
	}

	amountOut, err = r.executor.ExactInput(ctx, engine.ExactInputOrder{
		Path:             path,
		Recipient:        recipient,
		Deadline:         params.Deadline,
		AmountIn:         amountIn,
		AmountOutMinimum: bound,
	})
	if err != nil {
		return nil, bound, boundSource, fmt.Errorf("exact input execution: %w", err)
	}

	// The engine enforces the minimum itself; re-check anyway.
	if amountOut.Cmp(bound) < 0 {
		return nil, bound, boundSource, fmt.Errorf("%w: %s < %s", ErrInsufficientOutput, amountOut, bound)
	}

	if nativeOut {
		if err := r.forwardNative(ctx, params.Caller, amountOut); err != nil {
			return nil, bound, boundSource, err
		}
	}

	r.logger.Info("swap exact input",
		zap.String("caller", params.Caller.Hex()),
		zap.Int("hops", len(hops)),
		zap.String("amount_in", amountIn.String()),
		zap.String("amount_out", amountOut.String()),
		zap.String("bound", bound.String()),
		zap.String("bound_source", boundSource),
	)
	return amountOut, bound, boundSource, nil
}

func (r *Router) swapExactOutput(ctx context.Context, params ExactOutputParams) (amountIn, bound *big.Int, boundSource string, err error) {
	nativeIn := len(params.Hops) > 0 && params.Hops[0].In.IsNative()

	hops, err := r.validate(params.Hops, params.Deadline, params.AmountOut, ErrInvalidAmountOut)
	if err != nil {
		return nil, nil, "", err
	}
	nativeOut := params.Hops[len(params.Hops)-1].Out.IsNative()

	// For a native input the attached value is the input ceiling; there
	// is nothing to derive because the caller cannot attach more later.
	bound = params.AmountInMaximum
	boundSource = "caller"
	switch {
	case nativeIn:
		if params.Value == nil || params.Value.Sign() <= 0 {
			return nil, nil, "", ErrMissingNativeValue
		}
		bound = params.Value
		boundSource = "value"
	case bound == nil || bound.Sign() == 0:
		boundSource = "oracle"
		bound, err = r.deriveInputMaximum(ctx, hops, params.AmountOut, r.SlippageBps())
		if err != nil {
			return nil, nil, "", err
		}
	}
	if bound.Sign() == 0 {
		return nil, nil, "", ErrBoundIsZero
	}
	if bound.Cmp(tickmath.MaxQuoteAmount) > 0 {
		return nil, nil, "", fmt.Errorf("%w: %s", ErrAmountTooLarge, bound)
	}

	if err := r.settleInput(ctx, hops[0].in, nativeIn, params.Caller, bound); err != nil {
		return nil, bound, boundSource, err
	}

	path, err := encodePath(hops, true)
	if err != nil {
		return nil, bound, boundSource, err
	}

	recipient := params.Caller
	if nativeOut {
		recipient = r.self
	}

	amountIn, err = r.executor.ExactOutput(ctx, engine.ExactOutputOrder{
		Path:            path,
		Recipient:       recipient,
		Deadline:        params.Deadline,
		AmountOut:       params.AmountOut,
		AmountInMaximum: bound,
	})
	if err != nil {
		return nil, bound, boundSource, fmt.Errorf("exact output execution: %w", err)
	}

	if err := r.refundUnspent(ctx, hops[0].in, nativeIn, params.Caller, bound, amountIn); err != nil {
		return nil, bound, boundSource, err
	}

	if nativeOut {
		if err := r.forwardNative(ctx, params.Caller, params.AmountOut); err != nil {
			return nil, bound, boundSource, err
		}
	}

	r.logger.Info("swap exact output",
		zap.String("caller", params.Caller.Hex()),
		zap.Int("hops", len(hops)),
		zap.String("amount_out", params.AmountOut.String()),
		zap.String("amount_in", amountIn.String()),
		zap.String("bound", bound.String()),
		zap.String("bound_source", boundSource),
	)
	return amountIn, bound, boundSource, nil
}

// validate runs the entry checks shared by both swap modes and
// resolves native sentinels to the wrapped token per hop position.
func (r *Router) validate(hops []model.Hop, deadline int64, fixedAmount *big.Int, amountErr error) ([]resolvedHop, error) {
	if len(hops) == 0 {
		return nil, ErrNoHops
	}
	if deadline < r.now().Unix() {
		return nil, ErrDeadlineExpired
	}
	if fixedAmount == nil || fixedAmount.Sign() <= 0 {
		return nil, amountErr
	}
	if fixedAmount.Cmp(tickmath.MaxQuoteAmount) > 0 {
		return nil, fmt.Errorf("%w: %s", amountErr, fixedAmount)
	}

	wrapped := r.wrapper.Token()
	resolved := make([]resolvedHop, 0, len(hops))
	for i, hop := range hops {
		if hop.In.IsNative() && i != 0 {
			return nil, ErrNativePlacement
		}
		if hop.Out.IsNative() && i != len(hops)-1 {
			return nil, ErrNativePlacement
		}
		if hop.Fee == 0 {
			return nil, fmt.Errorf("%w: hop %d", ErrInvalidFee, i)
		}

		in := hop.In.Resolve(wrapped)
		out := hop.Out.Resolve(wrapped)
		if in == out {
			return nil, fmt.Errorf("%w: hop %d", ErrInvalidTokens, i)
		}
		if _, err := r.reg.RequirePool(in, out, hop.Fee); err != nil {
			return nil, err
		}
		resolved = append(resolved, resolvedHop{in: in, out: out, fee: hop.Fee})
	}
	return resolved, nil
}

// settleInput takes custody of the declared input and approves the
// execution engine for exactly that amount. The approval is reset to
// zero first; some tokens reject nonzero-to-nonzero transitions.
func (r *Router) settleInput(ctx context.Context, tokenIn common.Address, nativeIn bool, caller common.Address, amount *big.Int) error {
	if nativeIn {
		if err := r.wrapper.Wrap(ctx, amount); err != nil {
			return fmt.Errorf("wrap native input: %w", err)
		}
	} else {
		if err := r.backend.TransferFrom(ctx, tokenIn, caller, r.self, amount); err != nil {
			return fmt.Errorf("pull input: %w", err)
		}
	}

	if err := r.backend.Approve(ctx, tokenIn, r.executorID, big.NewInt(0)); err != nil {
		return fmt.Errorf("reset approval: %w", err)
	}
	if err := r.backend.Approve(ctx, tokenIn, r.executorID, amount); err != nil {
		return fmt.Errorf("approve input: %w", err)
	}
	return nil
}

// refundUnspent returns the difference between the pulled maximum and
// the engine's actual spend.
func (r *Router) refundUnspent(ctx context.Context, tokenIn common.Address, nativeIn bool, caller common.Address, pulled, spent *big.Int) error {
	refund := new(big.Int).Sub(pulled, spent)
	if refund.Sign() <= 0 {
		return nil
	}

	if nativeIn {
		if err := r.wrapper.Unwrap(ctx, refund); err != nil {
			return fmt.Errorf("unwrap refund: %w", err)
		}
		if err := r.backend.SendNative(ctx, caller, refund); err != nil {
			return fmt.Errorf("%w: refund: %v", ErrNativeTransferFailed, err)
		}
		return nil
	}
	if err := r.backend.Transfer(ctx, tokenIn, caller, refund); err != nil {
		return fmt.Errorf("refund input: %w", err)
	}
	return nil
}

// forwardNative unwraps the engine's output and sends it to the caller.
func (r *Router) forwardNative(ctx context.Context, caller common.Address, amount *big.Int) error {
	if err := r.wrapper.Unwrap(ctx, amount); err != nil {
		return fmt.Errorf("unwrap output: %w", err)
	}
	if err := r.backend.SendNative(ctx, caller, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrNativeTransferFailed, err)
	}
	return nil
}

func (r *Router) journalSwap(ctx context.Context, mode string, caller common.Address, hops []model.Hop, fixed, bound *big.Int, boundSource string, result *big.Int, deadline int64, swapErr error) {
	if r.journal == nil {
		return
	}

	record := model.SwapRecord{
		Mode:        mode,
		Caller:      caller.Hex(),
		Deadline:    deadline,
		BoundSource: boundSource,
		Outcome:     "ok",
		ExecutedAt:  r.now().UTC().Format(time.RFC3339),
	}
	for i, hop := range hops {
		if i == 0 {
			record.Path = append(record.Path, hop.In.String())
		}
		record.Path = append(record.Path, hop.Out.String())
		record.Fees = append(record.Fees, hop.Fee)
	}
	if fixed != nil {
		record.AmountFixed = fixed.String()
	}
	if bound != nil {
		record.Bound = bound.String()
	}
	if result != nil {
		record.Amount = result.String()
	}
	if swapErr != nil {
		record.Outcome = "error"
		record.Error = swapErr.Error()
	}

	if err := r.journal.RecordSwap(ctx, record); err != nil {
		r.logger.Warn("journal swap failed", zap.Error(err))
	}
}
