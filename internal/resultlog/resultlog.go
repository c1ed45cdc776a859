// Package resultlog is the append-only sink for scan results and
// executed trades. Appends are serialized so concurrent instrument
// tasks never interleave partial lines; records are never rewritten.
package resultlog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var mu sync.Mutex

// TradeEntry records one fully placed bracket.
type TradeEntry struct {
	Time              string  `json:"time"`
	Symbol            string  `json:"symbol"`
	Side              string  `json:"side"`
	Amount            float64 `json:"amount"`
	Entry             float64 `json:"entry"`
	Stop              float64 `json:"stop"`
	TP                float64 `json:"tp"`
	EntryOrderID      string  `json:"entry_order_id"`
	StopOrderID       string  `json:"stop_order_id"`
	TakeProfitOrderID string  `json:"take_profit_order_id"`
	Confidence        float64 `json:"confidence"`
	Reason            string  `json:"reason"`
}

func logDir() string {
	if v := os.Getenv("BOT_LOG_DIR"); v != "" {
		return v
	}
	return "results"
}

func symbolFilepath(symbol string) string {
	return filepath.Join(logDir(), symbol+".json")
}

func tradesFilepath(t time.Time) string {
	d := t.UTC().Format("2006-01-02")
	return filepath.Join(logDir(), "trades", d+".txt")
}

// Append writes one scan record to the instrument's file as a single
// JSON line. Timestamps are the caller's concern; records arrive
// already stamped.
func Append(symbol string, record any) error {
	mu.Lock()
	defer mu.Unlock()

	p := symbolFilepath(symbol)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// AppendTrade writes one executed bracket to the daily trade log.
func AppendTrade(e TradeEntry) error {
	mu.Lock()
	defer mu.Unlock()

	now := time.Now().UTC()
	if e.Time == "" {
		e.Time = now.Format(time.RFC3339)
	}
	p := tradesFilepath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips log files older than retentionDays. Best effort:
// individual file failures are skipped, not fatal.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	root := logDir()
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := filepath.Ext(p)
		if ext != ".txt" && ext != ".json" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil || !info.ModTime().Before(cutoff) {
			return nil
		}

		gz := p + ".gz"
		if _, e2 := os.Stat(gz); e2 == nil {
			_ = os.Remove(p)
			return nil
		}

		in, e3 := os.Open(p)
		if e3 != nil {
			return nil
		}
		defer in.Close()

		out, e4 := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if e4 != nil {
			return nil
		}
		gw := gzip.NewWriter(out)
		if _, e5 := io.Copy(gw, in); e5 == nil {
			_ = gw.Close()
			_ = out.Close()
			_ = os.Remove(p)
		} else {
			_ = gw.Close()
			_ = out.Close()
		}
		return nil
	})
}

// TradesFile exposes the daily trade log path for the report command.
func TradesFile(t time.Time) string { return tradesFilepath(t) }

// Dir exposes the sink root for the report command.
func Dir() string { return logDir() }
