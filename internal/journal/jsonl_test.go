package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"twapRouter/internal/model"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan journal: %v", err)
	}
	return lines
}

func TestJsonlAppendsOneLinePerRecord(t *testing.T) {
	dir := t.TempDir()
	swapPath := filepath.Join(dir, "swaps.jsonl")
	j := NewJsonlJournal(swapPath, "")
	ctx := context.Background()

	records := []model.SwapRecord{
		{Mode: "exact_input", Caller: "0xca11", Outcome: "ok", Amount: "995000"},
		{Mode: "exact_output", Caller: "0xca11", Outcome: "error", Error: "deadline expired"},
	}
	for _, record := range records {
		if err := j.RecordSwap(ctx, record); err != nil {
			t.Fatalf("record swap: %v", err)
		}
	}

	lines := readLines(t, swapPath)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	for i, line := range lines {
		var got model.SwapRecord
		if err := json.Unmarshal([]byte(line), &got); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", i, err)
		}
		if got.Mode != records[i].Mode || got.Outcome != records[i].Outcome {
			t.Fatalf("line %d mismatch: %+v", i, got)
		}
	}
}

func TestJsonlCreatesParentDir(t *testing.T) {
	dir := t.TempDir()
	quotePath := filepath.Join(dir, "nested", "deep", "quotes.jsonl")
	j := NewJsonlJournal("", quotePath)

	err := j.RecordQuote(context.Background(), model.QuoteRecord{
		AssetIn: "native", AssetOut: "0xaa", Fee: 3000, AmountOut: "42",
	})
	if err != nil {
		t.Fatalf("record quote: %v", err)
	}
	if lines := readLines(t, quotePath); len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
}

func TestJsonlEmptyPathIsNoop(t *testing.T) {
	j := NewJsonlJournal("", "")

	if err := j.RecordSwap(context.Background(), model.SwapRecord{Mode: "exact_input"}); err != nil {
		t.Fatalf("empty swap path must be a no-op, got %v", err)
	}
	if err := j.RecordQuote(context.Background(), model.QuoteRecord{}); err != nil {
		t.Fatalf("empty quote path must be a no-op, got %v", err)
	}
}

func TestMultiFansOut(t *testing.T) {
	dir := t.TempDir()
	first := NewJsonlJournal(filepath.Join(dir, "a.jsonl"), "")
	second := NewJsonlJournal(filepath.Join(dir, "b.jsonl"), "")
	multi := Multi{first, second}

	if err := multi.RecordSwap(context.Background(), model.SwapRecord{Mode: "exact_input", Outcome: "ok"}); err != nil {
		t.Fatalf("multi record: %v", err)
	}

	for _, name := range []string{"a.jsonl", "b.jsonl"} {
		if lines := readLines(t, filepath.Join(dir, name)); len(lines) != 1 {
			t.Fatalf("%s: expected 1 line, got %d", name, len(lines))
		}
	}
}
