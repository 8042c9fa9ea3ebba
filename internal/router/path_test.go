package router

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestEncodePathForward(t *testing.T) {
	hops := []resolvedHop{
		{in: tokenA, out: tokenB, fee: 3000},
		{in: tokenB, out: tokenC, fee: 500},
	}

	path, err := encodePath(hops, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := tokenA.Bytes()
	want = append(want, 0x00, 0x0b, 0xb8) // 3000
	want = append(want, tokenB.Bytes()...)
	want = append(want, 0x00, 0x01, 0xf4) // 500
	want = append(want, tokenC.Bytes()...)

	if !bytes.Equal(path, want) {
		t.Fatalf("path mismatch:\n got %x\nwant %x", path, want)
	}
}

func TestEncodePathReverse(t *testing.T) {
	hops := []resolvedHop{
		{in: tokenA, out: tokenB, fee: 3000},
		{in: tokenB, out: tokenC, fee: 500},
	}

	path, err := encodePath(hops, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Reverse encoding walks the route tail to head.
	want := tokenC.Bytes()
	want = append(want, 0x00, 0x01, 0xf4)
	want = append(want, tokenB.Bytes()...)
	want = append(want, 0x00, 0x0b, 0xb8)
	want = append(want, tokenA.Bytes()...)

	if !bytes.Equal(path, want) {
		t.Fatalf("path mismatch:\n got %x\nwant %x", path, want)
	}
}

func TestEncodePathSingleHopLength(t *testing.T) {
	path, err := encodePath([]resolvedHop{{in: tokenA, out: tokenB, fee: 100}}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(path) != 2*common.AddressLength+feeSize {
		t.Fatalf("wrong length %d", len(path))
	}
}

func TestEncodePathErrors(t *testing.T) {
	if _, err := encodePath(nil, false); !errors.Is(err, ErrNoHops) {
		t.Fatalf("expected ErrNoHops, got %v", err)
	}
	if _, err := encodePath([]resolvedHop{{in: tokenA, out: tokenB, fee: 1 << 24}}, false); !errors.Is(err, ErrInvalidFee) {
		t.Fatalf("expected ErrInvalidFee, got %v", err)
	}
}
