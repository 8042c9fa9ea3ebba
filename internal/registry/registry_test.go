package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"twapRouter/internal/model"
)

var (
	tokenA = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	tokenB = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	tokenC = common.HexToAddress("0x00000000000000000000000000000000000000cc")
	poolAB = common.HexToAddress("0x0000000000000000000000000000000000001111")
	poolBC = common.HexToAddress("0x0000000000000000000000000000000000002222")
)

// fakeDirectory resolves pools from a fixed map keyed by canonical order.
type fakeDirectory struct {
	pools map[[3]interface{}]common.Address
	calls int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{pools: make(map[[3]interface{}]common.Address)}
}

func (d *fakeDirectory) add(token0, token1 common.Address, fee uint32, pool common.Address) {
	d.pools[[3]interface{}{token0, token1, fee}] = pool
}

func (d *fakeDirectory) Lookup(_ context.Context, token0, token1 common.Address, fee uint32) (common.Address, error) {
	d.calls++
	return d.pools[[3]interface{}{token0, token1, fee}], nil
}

func defaultDirectory() *fakeDirectory {
	dir := newFakeDirectory()
	dir.add(tokenA, tokenB, 3000, poolAB)
	dir.add(tokenB, tokenC, 500, poolBC)
	return dir
}

func TestCanonicalize(t *testing.T) {
	t0, t1, err := Canonicalize(tokenB, tokenA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if t0 != tokenA || t1 != tokenB {
		t.Fatalf("wrong order: %s %s", t0.Hex(), t1.Hex())
	}

	t0, t1, err = Canonicalize(tokenA, tokenB)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if t0 != tokenA || t1 != tokenB {
		t.Fatalf("order changed canonical result: %s %s", t0.Hex(), t1.Hex())
	}

	if _, _, err := Canonicalize(tokenA, tokenA); !errors.Is(err, ErrIdenticalTokens) {
		t.Fatalf("expected ErrIdenticalTokens, got %v", err)
	}
}

func TestNewRegistersPairs(t *testing.T) {
	reg, err := New(context.Background(), defaultDirectory(), []model.Pair{
		{TokenA: tokenB, TokenB: tokenA, Fee: 3000}, // reversed order on purpose
		{TokenA: tokenB, TokenB: tokenC, Fee: 500},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := reg.LookupPool(tokenA, tokenB, 3000); got != poolAB {
		t.Fatalf("lookup A/B: %s", got.Hex())
	}
	if got := reg.LookupPool(tokenB, tokenA, 3000); got != poolAB {
		t.Fatalf("lookup is order-dependent: %s", got.Hex())
	}
	if got := reg.LookupPool(tokenA, tokenC, 3000); got != (common.Address{}) {
		t.Fatalf("unregistered pair returned pool %s", got.Hex())
	}
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New(context.Background(), defaultDirectory(), []model.Pair{
		{TokenA: tokenA, TokenB: tokenB, Fee: 3000},
		{TokenA: tokenB, TokenB: tokenA, Fee: 3000}, // same unordered pair
	})
	if !errors.Is(err, ErrDuplicatePair) {
		t.Fatalf("expected ErrDuplicatePair, got %v", err)
	}
}

func TestNewRejectsInvalidPairs(t *testing.T) {
	cases := []struct {
		name  string
		pairs []model.Pair
		want  error
	}{
		{"empty list", nil, ErrEmptyPairList},
		{"identical tokens", []model.Pair{{TokenA: tokenA, TokenB: tokenA, Fee: 3000}}, ErrIdenticalTokens},
		{"zero token", []model.Pair{{TokenA: common.Address{}, TokenB: tokenB, Fee: 3000}}, ErrZeroToken},
		{"pool missing", []model.Pair{{TokenA: tokenA, TokenB: tokenC, Fee: 3000}}, ErrPoolNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(context.Background(), defaultDirectory(), tc.pairs)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestNewIsAllOrNothing(t *testing.T) {
	// The second entry is unknown to the directory; the first must not
	// survive anywhere observable.
	_, err := New(context.Background(), defaultDirectory(), []model.Pair{
		{TokenA: tokenA, TokenB: tokenB, Fee: 3000},
		{TokenA: tokenA, TokenB: tokenC, Fee: 3000},
	})
	if !errors.Is(err, ErrPoolNotFound) {
		t.Fatalf("expected ErrPoolNotFound, got %v", err)
	}
}

func TestRequirePool(t *testing.T) {
	reg, err := New(context.Background(), defaultDirectory(), []model.Pair{
		{TokenA: tokenA, TokenB: tokenB, Fee: 3000},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pool, err := reg.RequirePool(tokenB, tokenA, 3000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool != poolAB {
		t.Fatalf("wrong pool: %s", pool.Hex())
	}

	if _, err := reg.RequirePool(tokenA, tokenC, 3000); !errors.Is(err, ErrPairNotAllowed) {
		t.Fatalf("expected ErrPairNotAllowed, got %v", err)
	}
	if _, err := reg.RequirePool(tokenA, tokenB, 500); !errors.Is(err, ErrPairNotAllowed) {
		t.Fatalf("expected ErrPairNotAllowed for wrong fee, got %v", err)
	}
}
