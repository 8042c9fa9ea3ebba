package oracle

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twapRouter/internal/model"
	"twapRouter/internal/oracle/tickmath"
	"twapRouter/internal/registry"
)

var (
	tokenA = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	tokenB = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	tokenC = common.HexToAddress("0x00000000000000000000000000000000000000cc")
	poolAB = common.HexToAddress("0x0000000000000000000000000000000000001111")
	owner  = common.HexToAddress("0x000000000000000000000000000000000000f00d")
	rando  = common.HexToAddress("0x000000000000000000000000000000000000beef")
)

type staticDirectory map[common.Address]common.Address

func (d staticDirectory) Lookup(_ context.Context, token0, _ common.Address, _ uint32) (common.Address, error) {
	return d[token0], nil
}

// stubObserver returns a fixed mean tick and records the windows it saw.
type stubObserver struct {
	tick    int64
	windows []uint32
}

func (o *stubObserver) ObserveMeanTick(_ context.Context, _ common.Address, windowSec uint32) (int64, error) {
	o.windows = append(o.windows, windowSec)
	return o.tick, nil
}

func newTestOracle(t *testing.T, tick int64) (*Oracle, *stubObserver) {
	t.Helper()
	reg, err := registry.New(context.Background(), staticDirectory{tokenA: poolAB}, []model.Pair{
		{TokenA: tokenA, TokenB: tokenB, Fee: 3000},
	})
	require.NoError(t, err)

	observer := &stubObserver{tick: tick}
	orc, err := New(reg, observer, owner, 1800, nil)
	require.NoError(t, err)
	return orc, observer
}

func TestConsultValidation(t *testing.T) {
	orc, _ := newTestOracle(t, 0)
	ctx := context.Background()

	_, err := orc.Consult(ctx, tokenA, tokenA, 3000, big.NewInt(1))
	assert.ErrorIs(t, err, ErrIdenticalAssets)

	_, err = orc.Consult(ctx, tokenA, tokenB, 3000, big.NewInt(0))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = orc.Consult(ctx, tokenA, tokenB, 3000, nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	over := new(big.Int).Add(tickmath.MaxQuoteAmount, big.NewInt(1))
	_, err = orc.Consult(ctx, tokenA, tokenB, 3000, over)
	assert.ErrorIs(t, err, ErrAmountTooLarge)

	_, err = orc.Consult(ctx, tokenA, tokenC, 3000, big.NewInt(1))
	assert.ErrorIs(t, err, registry.ErrPairNotAllowed)
}

func TestConsultQuotesAtMeanTick(t *testing.T) {
	orc, observer := newTestOracle(t, 0)

	amount := big.NewInt(1_000_000)
	quote, err := orc.Consult(context.Background(), tokenA, tokenB, 3000, amount)
	require.NoError(t, err)

	// Mean tick zero prices the pair one to one.
	assert.Zero(t, amount.Cmp(quote))
	require.Len(t, observer.windows, 1)
	assert.Equal(t, uint32(1800), observer.windows[0])
}

func TestConsultUsesUpdatedWindow(t *testing.T) {
	orc, observer := newTestOracle(t, 0)
	require.NoError(t, orc.SetWindow(owner, 600))

	_, err := orc.Consult(context.Background(), tokenA, tokenB, 3000, big.NewInt(1))
	require.NoError(t, err)
	require.Len(t, observer.windows, 1)
	assert.Equal(t, uint32(600), observer.windows[0])
}

func TestSetWindowBounds(t *testing.T) {
	orc, _ := newTestOracle(t, 0)

	assert.ErrorIs(t, orc.SetWindow(owner, 0), ErrIntervalOutOfRange)
	assert.ErrorIs(t, orc.SetWindow(owner, MaxWindowSec+1), ErrIntervalOutOfRange)
	assert.NoError(t, orc.SetWindow(owner, MaxWindowSec))
	assert.Equal(t, MaxWindowSec, orc.Window())
}

func TestSetWindowOwnerGated(t *testing.T) {
	orc, _ := newTestOracle(t, 0)

	assert.ErrorIs(t, orc.SetWindow(rando, 600), ErrNotOwner)
	assert.Equal(t, uint32(1800), orc.Window(), "window must not change on rejected update")
}

func TestGetPoolIsTotal(t *testing.T) {
	orc, _ := newTestOracle(t, 0)

	assert.Equal(t, poolAB, orc.GetPool(tokenB, tokenA, 3000))
	assert.Equal(t, common.Address{}, orc.GetPool(tokenA, tokenC, 3000))
	assert.Equal(t, common.Address{}, orc.GetPool(tokenA, tokenA, 3000))
}

func TestNewRejectsBadWindow(t *testing.T) {
	reg, err := registry.New(context.Background(), staticDirectory{tokenA: poolAB}, []model.Pair{
		{TokenA: tokenA, TokenB: tokenB, Fee: 3000},
	})
	require.NoError(t, err)

	_, err = New(reg, &stubObserver{}, owner, 0, nil)
	assert.ErrorIs(t, err, ErrIntervalOutOfRange)
	_, err = New(reg, &stubObserver{}, owner, MaxWindowSec+1, nil)
	assert.ErrorIs(t, err, ErrIntervalOutOfRange)
}
