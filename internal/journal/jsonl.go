package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"twapRouter/internal/model"
)

// JsonlJournal appends records to JSONL files, one per record kind.
type JsonlJournal struct {
	swapPath  string
	quotePath string
	mu        sync.Mutex
}

func NewJsonlJournal(swapPath, quotePath string) *JsonlJournal {
	return &JsonlJournal{swapPath: swapPath, quotePath: quotePath}
}

// RecordSwap appends the swap record as one JSON line.
func (j *JsonlJournal) RecordSwap(_ context.Context, record model.SwapRecord) error {
	return j.appendLine(j.swapPath, record)
}

// RecordQuote appends the quote record as one JSON line.
func (j *JsonlJournal) RecordQuote(_ context.Context, record model.QuoteRecord) error {
	return j.appendLine(j.quotePath, record)
}

func (j *JsonlJournal) appendLine(path string, record interface{}) error {
	if path == "" {
		return nil
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create journal dir: %w", err)
		}
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open journal file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if _, err := writer.Write(line); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	if err := writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush journal: %w", err)
	}
	return nil
}
