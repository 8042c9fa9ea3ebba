package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"twapRouter/internal/model"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL       string
	PrivateKey   string
	Factory      string
	ExecRouter   string
	Wrapped      string
	Pairs        []string
	WindowSec    uint32
	SlippageBps  uint32
	SwapJournal  string
	QuoteJournal string
	PgDSN        string
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ROUTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("window", uint32(1800))
	v.SetDefault("slippage-bps", uint32(50))
	v.SetDefault("swap-journal", "./data/swaps.jsonl")
	v.SetDefault("quote-journal", "./data/quotes.jsonl")
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:       v.GetString("rpc"),
		PrivateKey:   v.GetString("private-key"),
		Factory:      v.GetString("factory"),
		ExecRouter:   v.GetString("exec-router"),
		Wrapped:      v.GetString("wrapped"),
		Pairs:        getStringSlice(v, "pair"),
		WindowSec:    v.GetUint32("window"),
		SlippageBps:  v.GetUint32("slippage-bps"),
		SwapJournal:  v.GetString("swap-journal"),
		QuoteJournal: v.GetString("quote-journal"),
		PgDSN:        v.GetString("pg-dsn"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     v.GetString("log-level"),
	}

	return cfg, nil
}

// ParsePairs parses pair specs of the form tokenA:tokenB:fee.
func ParsePairs(specs []string) ([]model.Pair, error) {
	pairs := make([]model.Pair, 0, len(specs))
	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid pair spec %q, want tokenA:tokenB:fee", spec)
		}
		if !common.IsHexAddress(parts[0]) || !common.IsHexAddress(parts[1]) {
			return nil, fmt.Errorf("invalid token address in pair spec %q", spec)
		}
		fee, err := strconv.ParseUint(parts[2], 10, 24)
		if err != nil {
			return nil, fmt.Errorf("invalid fee in pair spec %q: %w", spec, err)
		}
		pairs = append(pairs, model.Pair{
			TokenA: common.HexToAddress(parts[0]),
			TokenB: common.HexToAddress(parts[1]),
			Fee:    uint32(fee),
		})
	}
	return pairs, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
