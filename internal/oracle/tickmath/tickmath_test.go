package tickmath

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fromString(s string) *big.Int {
	n, _ := new(big.Int).SetString(s, 10)
	return n
}

var (
	tokenLow  = common.HexToAddress("0x0000000000000000000000000000000000000001")
	tokenHigh = common.HexToAddress("0x0000000000000000000000000000000000000002")
)

func TestSqrtRatioAtTick(t *testing.T) {
	t.Run("throws for too low", func(t *testing.T) {
		_, err := SqrtRatioAtTick(MinTick - 1)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTickOutOfBounds)
	})

	t.Run("throws for too high", func(t *testing.T) {
		_, err := SqrtRatioAtTick(MaxTick + 1)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTickOutOfBounds)
	})

	t.Run("min tick", func(t *testing.T) {
		sqrtP, err := SqrtRatioAtTick(MinTick)
		require.NoError(t, err)
		assert.Zero(t, fromString("4295128739").Cmp(sqrtP))
	})

	t.Run("max tick", func(t *testing.T) {
		sqrtP, err := SqrtRatioAtTick(MaxTick)
		require.NoError(t, err)
		assert.Zero(t, fromString("1461446703485210103287273052203988822378723970342").Cmp(sqrtP))
	})

	t.Run("tick zero is exactly Q96", func(t *testing.T) {
		sqrtP, err := SqrtRatioAtTick(0)
		require.NoError(t, err)
		assert.Zero(t, new(big.Int).Lsh(big.NewInt(1), 96).Cmp(sqrtP))
	})

	t.Run("monotonic", func(t *testing.T) {
		prev, err := SqrtRatioAtTick(-100)
		require.NoError(t, err)
		for tick := int64(-99); tick <= 100; tick++ {
			cur, err := SqrtRatioAtTick(tick)
			require.NoError(t, err)
			assert.Negative(t, prev.Cmp(cur), "tick %d", tick)
			prev = cur
		}
	})
}

func TestQuoteAtTick(t *testing.T) {
	t.Run("tick zero quotes one to one", func(t *testing.T) {
		amount := fromString("123456789012345678")

		quote, err := QuoteAtTick(0, amount, tokenLow, tokenHigh)
		require.NoError(t, err)
		assert.Zero(t, amount.Cmp(quote))

		quote, err = QuoteAtTick(0, amount, tokenHigh, tokenLow)
		require.NoError(t, err)
		assert.Zero(t, amount.Cmp(quote))
	})

	t.Run("directions are not reciprocal but nearly round-trip", func(t *testing.T) {
		amount := fromString("1000000000000000000")

		forward, err := QuoteAtTick(12345, amount, tokenLow, tokenHigh)
		require.NoError(t, err)
		back, err := QuoteAtTick(12345, forward, tokenHigh, tokenLow)
		require.NoError(t, err)

		// Both directions floor, so the round trip never exceeds the
		// original and stays within a tiny relative error.
		assert.LessOrEqual(t, back.Cmp(amount), 0)
		diff := new(big.Int).Sub(amount, back)
		maxDiff := new(big.Int).Quo(amount, big.NewInt(1_000_000))
		assert.Negative(t, diff.Cmp(maxDiff), "diff %s", diff)
	})

	t.Run("matches arbitrary precision reference", func(t *testing.T) {
		amount := fromString("987654321987654321")
		tick := int64(-54321)

		sqrtP, err := SqrtRatioAtTick(tick)
		require.NoError(t, err)

		// floor(amount * sqrtP^2 / 2^192) for base = token0.
		want := new(big.Int).Mul(sqrtP, sqrtP)
		want.Mul(want, amount)
		want.Quo(want, new(big.Int).Lsh(big.NewInt(1), 192))

		got, err := QuoteAtTick(tick, amount, tokenLow, tokenHigh)
		require.NoError(t, err)
		assert.Zero(t, want.Cmp(got))
	})

	t.Run("large ratio branch", func(t *testing.T) {
		amount := big.NewInt(1)
		quote, err := QuoteAtTick(MaxTick, amount, tokenLow, tokenHigh)
		require.NoError(t, err)
		assert.Positive(t, quote.Sign())

		// The inverse direction of an enormous price floors to zero.
		quote, err = QuoteAtTick(MaxTick, amount, tokenHigh, tokenLow)
		require.NoError(t, err)
		assert.Zero(t, quote.Sign())
	})

	t.Run("propagates tick bounds error", func(t *testing.T) {
		_, err := QuoteAtTick(MaxTick+1, big.NewInt(1), tokenLow, tokenHigh)
		assert.ErrorIs(t, err, ErrTickOutOfBounds)
	})
}
