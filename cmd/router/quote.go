package main

import (
	"fmt"
	"math/big"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"twapRouter/internal/config"
	"twapRouter/internal/model"
)

func runQuote(cmd *cobra.Command, _ []string) error {
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

	inSpec, _ := cmd.Flags().GetString("in")
	outSpec, _ := cmd.Flags().GetString("out")
	fee, _ := cmd.Flags().GetUint32("fee")
	amountStr, _ := cmd.Flags().GetString("amount")

	assetIn, err := model.ParseAsset(inSpec)
	if err != nil {
		return err
	}
	assetOut, err := model.ParseAsset(outSpec)
	if err != nil {
		return err
	}
	amountIn, ok := new(big.Int).SetString(amountStr, 10)
	if !ok {
		return fmt.Errorf("invalid amount: %q", amountStr)
	}

	wrapped := hexAddr(cfg.Wrapped)
	amountOut, err := s.oracle.Consult(ctx, assetIn.Resolve(wrapped), assetOut.Resolve(wrapped), fee, amountIn)
	if err != nil {
		return err
	}

	s.logger.Info("quote",
		zap.String("asset_in", assetIn.String()),
		zap.String("asset_out", assetOut.String()),
		zap.Uint32("fee", fee),
		zap.String("amount_in", amountIn.String()),
		zap.String("amount_out", amountOut.String()),
		zap.Uint32("window_sec", s.oracle.Window()),
	)

	record := model.QuoteRecord{
		AssetIn:   assetIn.String(),
		AssetOut:  assetOut.String(),
		Fee:       fee,
		AmountIn:  amountIn.String(),
		AmountOut: amountOut.String(),
		WindowSec: s.oracle.Window(),
		QuotedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.journal.RecordQuote(ctx, record); err != nil {
		s.logger.Warn("journal quote failed", zap.Error(err))
	}

	fmt.Println(amountOut.String())
	return nil
}
