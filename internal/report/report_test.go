package report

import (
	"encoding/csv"
	"os"
	"testing"
	"time"

	"pullback-bot/internal/resultlog"
)

func TestSummarizeDay(t *testing.T) {
	t.Setenv("BOT_LOG_DIR", t.TempDir())

	entries := []resultlog.TradeEntry{
		{Symbol: "ETHUSDT", Side: "LONG", Amount: 2, Entry: 100, Stop: 98, TP: 104.4, Confidence: 80},
		{Symbol: "ETHUSDT", Side: "LONG", Amount: 1, Entry: 110, Stop: 108, TP: 114.4, Confidence: 60},
		{Symbol: "BTCUSDT", Side: "LONG", Amount: 0.5, Entry: 50000, Stop: 49500, TP: 51100, Confidence: 90},
	}
	for _, e := range entries {
		if err := resultlog.AppendTrade(e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	path, err := SummarizeToday()
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if path == "" {
		t.Fatal("expected an output path")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open summary: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}

	// header + BTCUSDT + ETHUSDT + TOTAL, symbols sorted
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[1][0] != "BTCUSDT" || rows[2][0] != "ETHUSDT" {
		t.Errorf("expected sorted symbols, got %q %q", rows[1][0], rows[2][0])
	}
	if rows[2][1] != "2" {
		t.Errorf("expected 2 ETHUSDT trades, got %q", rows[2][1])
	}
	// ETHUSDT amount-weighted entry: (2*100 + 1*110) / 3
	if rows[2][3] != "103.3333" {
		t.Errorf("unexpected avg entry: %q", rows[2][3])
	}
	// ETHUSDT planned risk: 2*2 + 1*2
	if rows[2][4] != "6.00" {
		t.Errorf("unexpected planned risk: %q", rows[2][4])
	}
	if rows[3][0] != "TOTAL" || rows[3][1] != "3" {
		t.Errorf("unexpected total row: %v", rows[3])
	}
}

func TestSummarizeDayNoTrades(t *testing.T) {
	t.Setenv("BOT_LOG_DIR", t.TempDir())

	path, err := SummarizeDay(time.Now().UTC())
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if path != "" {
		t.Errorf("expected no output without trades, got %q", path)
	}
}
