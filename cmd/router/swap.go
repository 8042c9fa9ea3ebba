package main

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"twapRouter/internal/config"
	"twapRouter/internal/model"
	"twapRouter/internal/router"
)

func runSwap(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	if cfg.PrivateKey == "" {
		return fmt.Errorf("private key is required to swap")
	}

	ctx, stop := signalContext()
	defer stop()

	s, err := buildStack(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	defer s.logger.Sync()

	mode, _ := cmd.Flags().GetString("mode")
	hopSpecs, _ := cmd.Flags().GetStringSlice("hop")
	amountStr, _ := cmd.Flags().GetString("amount")
	boundStr, _ := cmd.Flags().GetString("bound")
	valueStr, _ := cmd.Flags().GetString("value")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	hops, err := parseHops(hopSpecs)
	if err != nil {
		return err
	}
	amount, ok := new(big.Int).SetString(amountStr, 10)
	if !ok {
		return fmt.Errorf("invalid amount: %q", amountStr)
	}
	bound, ok := new(big.Int).SetString(boundStr, 10)
	if !ok {
		return fmt.Errorf("invalid bound: %q", boundStr)
	}
	value, ok := new(big.Int).SetString(valueStr, 10)
	if !ok {
		return fmt.Errorf("invalid value: %q", valueStr)
	}
	if value.Sign() == 0 {
		value = nil
	}

	caller := s.client.Sender()
	deadline := time.Now().Add(ttl).Unix()

	var result *big.Int
	switch mode {
	case "exact-input":
		result, err = s.router.SwapExactInput(ctx, router.ExactInputParams{
			Caller:           caller,
			Hops:             hops,
			AmountIn:         amount,
			AmountOutMinimum: bound,
			Value:            value,
			Deadline:         deadline,
		})
	case "exact-output":
		result, err = s.router.SwapExactOutput(ctx, router.ExactOutputParams{
			Caller:          caller,
			Hops:            hops,
			AmountOut:       amount,
			AmountInMaximum: bound,
			Value:           value,
			Deadline:        deadline,
		})
	default:
		return fmt.Errorf("unknown mode %q, want exact-input or exact-output", mode)
	}
	if err != nil {
		return err
	}

	fmt.Println(result.String())
	return nil
}

// parseHops parses hop specs of the form assetIn:assetOut:fee, where
// an asset is a hex address or the literal "native".
func parseHops(specs []string) ([]model.Hop, error) {
	hops := make([]model.Hop, 0, len(specs))
	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid hop spec %q, want assetIn:assetOut:fee", spec)
		}
		in, err := model.ParseAsset(parts[0])
		if err != nil {
			return nil, fmt.Errorf("hop %q: %w", spec, err)
		}
		out, err := model.ParseAsset(parts[1])
		if err != nil {
			return nil, fmt.Errorf("hop %q: %w", spec, err)
		}
		fee, err := strconv.ParseUint(parts[2], 10, 24)
		if err != nil {
			return nil, fmt.Errorf("invalid fee in hop spec %q: %w", spec, err)
		}
		hops = append(hops, model.Hop{In: in, Out: out, Fee: uint32(fee)})
	}
	return hops, nil
}
