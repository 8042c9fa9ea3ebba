package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"twapRouter/internal/chain"
	"twapRouter/internal/config"
	"twapRouter/internal/journal"
	"twapRouter/internal/journal/postgres"
	"twapRouter/internal/oracle"
	"twapRouter/internal/registry"
	"twapRouter/internal/router"
)

func main() {
	root := &cobra.Command{
		Use:          "router",
		Short:        "TWAP-bounded swap router",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("rpc", "", "chain RPC URL")
	root.PersistentFlags().String("private-key", "", "hex private key for the signing account")
	root.PersistentFlags().String("factory", "", "pool directory (factory) address")
	root.PersistentFlags().String("exec-router", "", "execution engine (swap router) address")
	root.PersistentFlags().String("wrapped", "", "wrapped native token address")
	root.PersistentFlags().StringSlice("pair", nil, "registered pairs, tokenA:tokenB:fee (comma-separated)")
	root.PersistentFlags().Uint32("window", 1800, "TWAP window in seconds")
	root.PersistentFlags().Uint32("slippage-bps", 50, "default slippage in basis points")
	root.PersistentFlags().String("swap-journal", "./data/swaps.jsonl", "swap journal JSONL path")
	root.PersistentFlags().String("quote-journal", "./data/quotes.jsonl", "quote journal JSONL path")
	root.PersistentFlags().String("pg-dsn", "", "optional Postgres DSN for the journal")
	root.PersistentFlags().Int("max-retries", 5, "maximum RPC retry attempts")
	root.PersistentFlags().Duration("retry-backoff", 500*time.Millisecond, "initial RPC retry backoff")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Consult the TWAP oracle for a pair",
		RunE:  runQuote,
	}
	quoteCmd.Flags().String("in", "", "input asset address (or 'native')")
	quoteCmd.Flags().String("out", "", "output asset address (or 'native')")
	quoteCmd.Flags().Uint32("fee", 0, "pool fee tier")
	quoteCmd.Flags().String("amount", "", "input amount in base units")
	root.AddCommand(quoteCmd)

	swapCmd := &cobra.Command{
		Use:   "swap",
		Short: "Execute a single- or multi-hop swap",
		RunE:  runSwap,
	}
	swapCmd.Flags().String("mode", "exact-input", "swap mode: exact-input or exact-output")
	swapCmd.Flags().StringSlice("hop", nil, "route hops, assetIn:assetOut:fee (comma-separated)")
	swapCmd.Flags().String("amount", "", "fixed amount in base units (input or output per mode)")
	swapCmd.Flags().String("bound", "0", "explicit slippage bound; 0 derives it from the oracle")
	swapCmd.Flags().String("value", "0", "attached native amount for native-input routes")
	swapCmd.Flags().Duration("ttl", 5*time.Minute, "deadline as an offset from now")
	root.AddCommand(swapCmd)

	pairsCmd := &cobra.Command{
		Use:   "pairs",
		Short: "List the registered pairs and their pools",
		RunE:  runPairs,
	}
	root.AddCommand(pairsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// stack bundles the wired components behind one Close.
type stack struct {
	client   *chain.Client
	registry *registry.Registry
	oracle   *oracle.Oracle
	router   *router.Router
	journal  journal.Journal
	pgStore  *postgres.Store
	logger   *zap.Logger
}

func (s *stack) Close() {
	if s.pgStore != nil {
		s.pgStore.Close()
	}
	if s.client != nil {
		s.client.Close()
	}
}

func buildStack(ctx context.Context, cfg config.Config) (*stack, error) {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	if !isHexAddr(cfg.Factory) {
		return nil, fmt.Errorf("factory address is required")
	}
	if !isHexAddr(cfg.ExecRouter) {
		return nil, fmt.Errorf("exec-router address is required")
	}
	if !isHexAddr(cfg.Wrapped) {
		return nil, fmt.Errorf("wrapped token address is required")
	}

	pairs, err := config.ParsePairs(cfg.Pairs)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("at least one pair is required")
	}

	client, err := chain.NewClient(ctx, cfg.RPCURL, cfg.PrivateKey, cfg.MaxRetries, cfg.RetryBackoff)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}

	s := &stack{client: client, logger: logger}

	directory, err := chain.NewDirectory(client, hexAddr(cfg.Factory))
	if err != nil {
		s.Close()
		return nil, err
	}
	reg, err := registry.New(ctx, directory, pairs)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("build registry: %w", err)
	}
	s.registry = reg

	observer, err := chain.NewObserver(client)
	if err != nil {
		s.Close()
		return nil, err
	}
	orc, err := oracle.New(reg, observer, client.Sender(), cfg.WindowSec, logger)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("build oracle: %w", err)
	}
	s.oracle = orc

	journals := journal.Multi{journal.NewJsonlJournal(cfg.SwapJournal, cfg.QuoteJournal)}
	if cfg.PgDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PgDSN)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("connect journal store: %w", err)
		}
		s.pgStore = store
		journals = append(journals, store)
	}
	s.journal = journals

	executor, err := chain.NewExecutor(client, hexAddr(cfg.ExecRouter))
	if err != nil {
		s.Close()
		return nil, err
	}
	wrapper, err := chain.NewWrapper(client, hexAddr(cfg.Wrapped))
	if err != nil {
		s.Close()
		return nil, err
	}
	backend, err := chain.NewTokenBackend(client)
	if err != nil {
		s.Close()
		return nil, err
	}

	rtr, err := router.New(router.Config{
		Registry:    reg,
		Oracle:      orc,
		Executor:    executor,
		ExecutorID:  executor.Router(),
		Wrapper:     wrapper,
		Backend:     backend,
		Self:        client.Sender(),
		Owner:       client.Sender(),
		SlippageBps: cfg.SlippageBps,
		Journal:     journals,
		Logger:      logger,
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("build router: %w", err)
	}
	s.router = rtr

	return s, nil
}

func isHexAddr(s string) bool {
	return common.IsHexAddress(s)
}

func hexAddr(s string) common.Address {
	return common.HexToAddress(s)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
