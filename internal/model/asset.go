package model

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Asset identifies one side of a trading pair. It is either a concrete
// ERC-20 token address or the chain's native currency, which has no
// address of its own and must be resolved to the wrapped token before
// any pool lookup.
type Asset struct {
	native bool
	addr   common.Address
}

// NativeAsset returns the native-currency asset.
func NativeAsset() Asset {
	return Asset{native: true}
}

// TokenAsset returns the asset for an ERC-20 token address.
func TokenAsset(addr common.Address) Asset {
	return Asset{addr: addr}
}

// ParseAsset parses a hex token address, or the native currency for
// the literal "native".
func ParseAsset(s string) (Asset, error) {
	if s == "native" {
		return NativeAsset(), nil
	}
	if !common.IsHexAddress(s) {
		return Asset{}, fmt.Errorf("invalid asset address: %s", s)
	}
	return TokenAsset(common.HexToAddress(s)), nil
}

// IsNative reports whether the asset is the native currency.
func (a Asset) IsNative() bool {
	return a.native
}

// Address returns the token address. It is the zero address for the
// native currency; callers must resolve native assets first.
func (a Asset) Address() common.Address {
	return a.addr
}

// Resolve maps the asset to a concrete token address, substituting the
// wrapped token for the native currency.
func (a Asset) Resolve(wrapped common.Address) common.Address {
	if a.native {
		return wrapped
	}
	return a.addr
}

func (a Asset) String() string {
	if a.native {
		return "native"
	}
	return a.addr.Hex()
}

// Hop is one leg of a swap route: assetIn traded for assetOut through
// the pool selected by Fee.
type Hop struct {
	In  Asset
	Out Asset
	Fee uint32
}

// Pair describes one registrable trading pair. Order of TokenA/TokenB
// does not matter; the registry canonicalizes it.
type Pair struct {
	TokenA common.Address
	TokenB common.Address
	Fee    uint32
}
