// Package registry keeps the fixed set of trusted trading pools. Pairs
// are registered once at construction, verified against the external
// pool directory, and immutable afterwards.
package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"twapRouter/internal/engine"
	"twapRouter/internal/model"
)

var (
	ErrIdenticalTokens = errors.New("pair tokens must differ")
	ErrZeroToken       = errors.New("pair token must not be the zero address")
	ErrDuplicatePair   = errors.New("pair already registered")
	ErrPoolNotFound    = errors.New("directory has no pool for pair")
	ErrPairNotAllowed  = errors.New("pair not allowed")
	ErrEmptyPairList   = errors.New("at least one pair is required")
)

// pairKey is the canonical registry key: token0 < token1 byte-wise.
type pairKey struct {
	token0 common.Address
	token1 common.Address
	fee    uint32
}

// Registry maps canonically ordered pairs to verified pool addresses.
type Registry struct {
	pools map[pairKey]common.Address
	pairs []model.Pair
}

// Canonicalize orders two token addresses so the lower one comes
// first. Fails if the addresses are equal.
func Canonicalize(a, b common.Address) (common.Address, common.Address, error) {
	switch bytes.Compare(a.Bytes(), b.Bytes()) {
	case 0:
		return common.Address{}, common.Address{}, ErrIdenticalTokens
	case -1:
		return a, b, nil
	default:
		return b, a, nil
	}
}

// New builds a registry from the pair list, verifying every pair
// against the directory. Construction is all-or-nothing: any invalid,
// duplicate, or unlisted pair fails the whole registry.
func New(ctx context.Context, directory engine.Directory, pairs []model.Pair) (*Registry, error) {
	if directory == nil {
		return nil, fmt.Errorf("directory is nil")
	}
	if len(pairs) == 0 {
		return nil, ErrEmptyPairList
	}

	pools := make(map[pairKey]common.Address, len(pairs))
	canonical := make([]model.Pair, 0, len(pairs))
	for _, pair := range pairs {
		if pair.TokenA == (common.Address{}) || pair.TokenB == (common.Address{}) {
			return nil, fmt.Errorf("%w: %s/%s", ErrZeroToken, pair.TokenA.Hex(), pair.TokenB.Hex())
		}
		token0, token1, err := Canonicalize(pair.TokenA, pair.TokenB)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", err, pair.TokenA.Hex())
		}

		key := pairKey{token0: token0, token1: token1, fee: pair.Fee}
		if _, exists := pools[key]; exists {
			return nil, fmt.Errorf("%w: %s/%s fee %d", ErrDuplicatePair, token0.Hex(), token1.Hex(), pair.Fee)
		}

		pool, err := directory.Lookup(ctx, token0, token1, pair.Fee)
		if err != nil {
			return nil, fmt.Errorf("directory lookup %s/%s fee %d: %w", token0.Hex(), token1.Hex(), pair.Fee, err)
		}
		if pool == (common.Address{}) {
			return nil, fmt.Errorf("%w: %s/%s fee %d", ErrPoolNotFound, token0.Hex(), token1.Hex(), pair.Fee)
		}

		pools[key] = pool
		canonical = append(canonical, model.Pair{TokenA: token0, TokenB: token1, Fee: pair.Fee})
	}

	return &Registry{pools: pools, pairs: canonical}, nil
}

// LookupPool returns the pool for a pair in either token order, or the
// zero address when the pair is not registered. It never fails.
func (r *Registry) LookupPool(tokenA, tokenB common.Address, fee uint32) common.Address {
	token0, token1, err := Canonicalize(tokenA, tokenB)
	if err != nil {
		return common.Address{}
	}
	return r.pools[pairKey{token0: token0, token1: token1, fee: fee}]
}

// RequirePool is LookupPool with enforcement: an unregistered pair
// fails with ErrPairNotAllowed.
func (r *Registry) RequirePool(tokenA, tokenB common.Address, fee uint32) (common.Address, error) {
	pool := r.LookupPool(tokenA, tokenB, fee)
	if pool == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %s/%s fee %d", ErrPairNotAllowed, tokenA.Hex(), tokenB.Hex(), fee)
	}
	return pool, nil
}

// Pairs returns the registered pairs in canonical order. The slice is
// a copy; callers may not mutate registry state through it.
func (r *Registry) Pairs() []model.Pair {
	out := make([]model.Pair, len(r.pairs))
	copy(out, r.pairs)
	return out
}
