package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"twapRouter/internal/config"
)

func runPairs(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	s, err := buildStack(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	defer s.logger.Sync()

	for _, pair := range s.registry.Pairs() {
		pool := s.registry.LookupPool(pair.TokenA, pair.TokenB, pair.Fee)
		fmt.Printf("%s %s fee=%d pool=%s\n", pair.TokenA.Hex(), pair.TokenB.Hex(), pair.Fee, pool.Hex())
	}
	return nil
}
