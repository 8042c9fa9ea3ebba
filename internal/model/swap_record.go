package model

// SwapRecord captures one executed (or attempted) swap for the journal.
type SwapRecord struct {
	Mode        string   `json:"mode"` // "exact_input" or "exact_output"
	Caller      string   `json:"caller"`
	Path        []string `json:"path"`
	Fees        []uint32 `json:"fees"`
	AmountFixed string   `json:"amount_fixed"`
	Bound       string   `json:"bound"`
	BoundSource string   `json:"bound_source"` // "caller", "oracle" or "value"
	Amount      string   `json:"amount,omitempty"`
	Deadline    int64    `json:"deadline"`
	Outcome     string   `json:"outcome"` // "ok" or "error"
	Error       string   `json:"error,omitempty"`
	ExecutedAt  string   `json:"executed_at"`
}

// QuoteRecord captures one oracle consultation issued through the CLI.
type QuoteRecord struct {
	AssetIn   string `json:"asset_in"`
	AssetOut  string `json:"asset_out"`
	Fee       uint32 `json:"fee"`
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
	WindowSec uint32 `json:"window_sec"`
	QuotedAt  string `json:"quoted_at"`
}
