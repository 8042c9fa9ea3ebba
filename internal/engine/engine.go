// Package engine declares the interfaces through which the router and
// oracle talk to the external AMM system. The AMM itself — the pool
// directory, the pools' observation machinery, the execution router,
// the wrapped-native token and the ERC-20 primitives — lives on chain
// and is consumed only through these interfaces.
package engine

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Directory maps a canonical (token0, token1, fee) triple to a pool
// address. The zero address means no such pool exists.
type Directory interface {
	Lookup(ctx context.Context, token0, token1 common.Address, fee uint32) (common.Address, error)
}

// Observer reads a pool's time-weighted observations. ObserveMeanTick
// returns the arithmetic-mean tick over the trailing window.
type Observer interface {
	ObserveMeanTick(ctx context.Context, pool common.Address, windowSec uint32) (int64, error)
}

// ExactInputOrder fixes the input amount; the engine must produce at
// least AmountOutMinimum or revert.
type ExactInputOrder struct {
	Path             []byte
	Recipient        common.Address
	Deadline         int64
	AmountIn         *big.Int
	AmountOutMinimum *big.Int
}

// ExactOutputOrder fixes the output amount; the engine must spend at
// most AmountInMaximum or revert.
type ExactOutputOrder struct {
	Path            []byte
	Recipient       common.Address
	Deadline        int64
	AmountOut       *big.Int
	AmountInMaximum *big.Int
}

// Executor is the external execution engine that performs swaps along
// an encoded path. ExactInput returns the produced output amount;
// ExactOutput returns the consumed input amount.
type Executor interface {
	ExactInput(ctx context.Context, order ExactInputOrder) (*big.Int, error)
	ExactOutput(ctx context.Context, order ExactOutputOrder) (*big.Int, error)
}

// Wrapper converts between the native currency and its wrapped ERC-20
// representation.
type Wrapper interface {
	Token() common.Address
	Wrap(ctx context.Context, amount *big.Int) error
	Unwrap(ctx context.Context, amount *big.Int) error
}

// TokenBackend provides the ERC-20 transfer/approve primitives plus
// native-currency forwarding. Every method either fully succeeds or
// returns an error; there are no partial transfers.
type TokenBackend interface {
	TransferFrom(ctx context.Context, token, from, to common.Address, amount *big.Int) error
	Transfer(ctx context.Context, token, to common.Address, amount *big.Int) error
	Approve(ctx context.Context, token, spender common.Address, amount *big.Int) error
	SendNative(ctx context.Context, to common.Address, amount *big.Int) error
}
