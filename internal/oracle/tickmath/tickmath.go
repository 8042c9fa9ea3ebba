// Package tickmath converts pool ticks into Q64.96 sqrt prices and
// spot quotes, following the pool engine's fixed-point conventions.
package tickmath

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const (
	// MinTick and MaxTick bound the tick range the pool engine accepts.
	MinTick = int64(-887272)
	MaxTick = int64(887272)
)

var (
	ErrTickOutOfBounds = errors.New("tick out of bounds")

	// MaxQuoteAmount is the largest amount the quote engine represents
	// (uint128 range in the pool engine).
	MaxQuoteAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

	one        = uint256.NewInt(1)
	maxUint256 = uint256.MustFromBig(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)))
	roundMask  = uint256.NewInt(0xffffffff)

	q64  = new(big.Int).Lsh(big.NewInt(1), 64)
	q128 = new(big.Int).Lsh(big.NewInt(1), 128)
	q192 = new(big.Int).Lsh(big.NewInt(1), 192)

	// ratioConstants[i] is sqrt(1.0001^(2^i)) in UQ128.128, except index 1
	// which is the UQ128.128 one used when the low bit is clear.
	ratioConstants = [21]*uint256.Int{
		mustHex("0xfffcb933bd6fad37aa2d162d1a594001"),
		mustHex("0x100000000000000000000000000000000"),
		mustHex("0xfff97272373d413259a46990580e213a"),
		mustHex("0xfff2e50f5f656932ef12357cf3c7fdcc"),
		mustHex("0xffe5caca7e10e4e61c3624eaa0941cd0"),
		mustHex("0xffcb9843d60f6159c9db58835c926644"),
		mustHex("0xff973b41fa98c081472e6896dfb254c0"),
		mustHex("0xff2ea16466c96a3843ec78b326b52861"),
		mustHex("0xfe5dee046a99a2a811c461f1969c3053"),
		mustHex("0xfcbe86c7900a88aedcffc83b479aa3a4"),
		mustHex("0xf987a7253ac413176f2b074cf7815e54"),
		mustHex("0xf3392b0822b70005940c7a398e4b70f3"),
		mustHex("0xe7159475a2c29b7443b29c7fa6e889d9"),
		mustHex("0xd097f3bdfd2022b8845ad8f792aa5825"),
		mustHex("0xa9f746462d870fdf8a65dc1f90e061e5"),
		mustHex("0x70d869a156d2a1b890bb3df62baf32f7"),
		mustHex("0x31be135f97d08fd981231505542fcfa6"),
		mustHex("0x9aa508b5b7a84e1c677de54f3e99bc9"),
		mustHex("0x5d6af8dedb81196699c329225ee604"),
		mustHex("0x2216e584f5fa1ea926041bedfe98"),
		mustHex("0x48a170391f7dc42444e8fa2"),
	}
)

func mustHex(s string) *uint256.Int {
	n, ok := new(big.Int).SetString(s[2:], 16)
	if !ok {
		panic("tickmath: bad hex constant " + s)
	}
	return uint256.MustFromBig(n)
}

// SqrtRatioAtTick returns sqrt(1.0001^tick) * 2^96, matching the pool
// engine's rounding bit for bit.
func SqrtRatioAtTick(tick int64) (*big.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, ErrTickOutOfBounds
	}

	absTick := tick
	if tick < 0 {
		absTick = -tick
	}

	ratio := new(uint256.Int)
	if absTick&1 != 0 {
		ratio.Set(ratioConstants[0])
	} else {
		ratio.Set(ratioConstants[1])
	}
	for i := 2; i < len(ratioConstants); i++ {
		if absTick&(1<<(i-1)) != 0 {
			ratio.Mul(ratio, ratioConstants[i]).Rsh(ratio, 128)
		}
	}

	if tick > 0 {
		ratio.Div(maxUint256, ratio)
	}

	// UQ128.128 -> Q64.96, rounding up so the result never understates
	// the true sqrt ratio.
	rem := new(uint256.Int).And(ratio, roundMask)
	ratio.Rsh(ratio, 32)
	if rem.Sign() > 0 {
		ratio.Add(ratio, one)
	}

	return ratio.ToBig(), nil
}

// QuoteAtTick converts baseAmount of baseToken into the equivalent
// amount of quoteToken at the price implied by tick. Both directions
// round down independently, so quoting A->B is not the reciprocal of
// B->A. The branch on the sqrt ratio magnitude mirrors the engine's
// own overflow-avoidance split and its slightly different truncation.
func QuoteAtTick(tick int64, baseAmount *big.Int, baseToken, quoteToken common.Address) (*big.Int, error) {
	sqrtRatioX96, err := SqrtRatioAtTick(tick)
	if err != nil {
		return nil, err
	}

	baseIsToken0 := new(big.Int).SetBytes(baseToken.Bytes()).Cmp(new(big.Int).SetBytes(quoteToken.Bytes())) < 0

	if sqrtRatioX96.BitLen() <= 128 {
		ratioX192 := new(big.Int).Mul(sqrtRatioX96, sqrtRatioX96)
		if baseIsToken0 {
			return mulDiv(ratioX192, baseAmount, q192), nil
		}
		return mulDiv(q192, baseAmount, ratioX192), nil
	}

	ratioX128 := mulDiv(sqrtRatioX96, sqrtRatioX96, q64)
	if baseIsToken0 {
		return mulDiv(ratioX128, baseAmount, q128), nil
	}
	return mulDiv(q128, baseAmount, ratioX128), nil
}

// mulDiv computes floor(a * b / denom) in arbitrary precision.
func mulDiv(a, b, denom *big.Int) *big.Int {
	out := new(big.Int).Mul(a, b)
	return out.Quo(out, denom)
}
