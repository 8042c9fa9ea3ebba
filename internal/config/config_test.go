package config

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestParsePairs(t *testing.T) {
	pairs, err := ParsePairs([]string{
		"0x00000000000000000000000000000000000000aa:0x00000000000000000000000000000000000000bb:3000",
		"0x00000000000000000000000000000000000000bb:0x00000000000000000000000000000000000000cc:500",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	if pairs[0].TokenA != common.HexToAddress("0x00000000000000000000000000000000000000aa") {
		t.Fatalf("tokenA mismatch: %s", pairs[0].TokenA.Hex())
	}
	if pairs[0].Fee != 3000 || pairs[1].Fee != 500 {
		t.Fatalf("fee mismatch: %d %d", pairs[0].Fee, pairs[1].Fee)
	}
}

func TestParsePairsRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		spec string
	}{
		{"missing fee", "0x00000000000000000000000000000000000000aa:0x00000000000000000000000000000000000000bb"},
		{"bad address", "nothex:0x00000000000000000000000000000000000000bb:3000"},
		{"bad fee", "0x00000000000000000000000000000000000000aa:0x00000000000000000000000000000000000000bb:notanumber"},
		{"fee too wide", "0x00000000000000000000000000000000000000aa:0x00000000000000000000000000000000000000bb:16777216"},
		{"negative fee", "0x00000000000000000000000000000000000000aa:0x00000000000000000000000000000000000000bb:-1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParsePairs([]string{tc.spec}); err == nil {
				t.Fatalf("expected error for %q", tc.spec)
			}
		})
	}
}

func TestSplitAndClean(t *testing.T) {
	got := splitAndClean(" a:b:1 , ,b:c:2,")
	if len(got) != 2 || got[0] != "a:b:1" || got[1] != "b:c:2" {
		t.Fatalf("unexpected result: %#v", got)
	}
	if splitAndClean("") != nil {
		t.Fatalf("empty input must yield nil")
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WindowSec != 1800 {
		t.Fatalf("default window: %d", cfg.WindowSec)
	}
	if cfg.SlippageBps != 50 {
		t.Fatalf("default slippage: %d", cfg.SlippageBps)
	}
	if cfg.MaxRetries != 5 {
		t.Fatalf("default retries: %d", cfg.MaxRetries)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("default log level: %s", cfg.LogLevel)
	}
}
