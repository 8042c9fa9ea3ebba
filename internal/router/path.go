package router

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

const (
	addrSize = common.AddressLength
	feeSize  = 3
)

// resolvedHop is a route leg after native-currency normalization; both
// sides are concrete token addresses.
type resolvedHop struct {
	in  common.Address
	out common.Address
	fee uint32
}

// encodePath packs hops into the execution engine's multi-segment path
// format: addr(20B) | fee(3B) | addr(20B) | ... | addr(20B). The engine
// walks exact-output paths tail-to-head, so those are encoded in
// reverse, last asset first. The buffer is sized up front; one write
// pass, no reallocation.
func encodePath(hops []resolvedHop, reverse bool) ([]byte, error) {
	if len(hops) == 0 {
		return nil, ErrNoHops
	}
	for _, hop := range hops {
		if hop.fee >= 1<<24 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidFee, hop.fee)
		}
	}

	path := make([]byte, addrSize+len(hops)*(feeSize+addrSize))
	offset := 0

	putAddr := func(addr common.Address) {
		copy(path[offset:], addr.Bytes())
		offset += addrSize
	}
	putFee := func(fee uint32) {
		path[offset] = byte(fee >> 16)
		path[offset+1] = byte(fee >> 8)
		path[offset+2] = byte(fee)
		offset += feeSize
	}

	if reverse {
		putAddr(hops[len(hops)-1].out)
		for i := len(hops) - 1; i >= 0; i-- {
			putFee(hops[i].fee)
			putAddr(hops[i].in)
		}
		return path, nil
	}

	putAddr(hops[0].in)
	for _, hop := range hops {
		putFee(hop.fee)
		putAddr(hop.out)
	}
	return path, nil
}
