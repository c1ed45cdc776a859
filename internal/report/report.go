// Package report aggregates the daily trade log into a per-symbol CSV
// summary of planned exposure.
package report

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"pullback-bot/internal/resultlog"
)

type aggRow struct {
	Symbol        string
	Trades        int
	TotalAmount   float64
	EntryValue    float64 // amount-weighted entries
	PlannedRisk   float64
	PlannedReward float64
	ConfidenceSum float64
}

func summaryCSVPath(t time.Time) string {
	d := t.UTC().Format("2006-01-02")
	return filepath.Join(resultlog.Dir(), "summary", d+".csv")
}

// SummarizeDay reads the day's trade log and writes a per-symbol CSV.
// Returns the output path, or "" when the day has no trades.
func SummarizeDay(t time.Time) (string, error) {
	inPath := resultlog.TradesFile(t)
	if _, err := os.Stat(inPath); err != nil {
		return "", nil
	}
	f, err := os.Open(inPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	aggs := map[string]*aggRow{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var te resultlog.TradeEntry
		if err := json.Unmarshal(sc.Bytes(), &te); err != nil {
			continue
		}
		row := aggs[te.Symbol]
		if row == nil {
			row = &aggRow{Symbol: te.Symbol}
			aggs[te.Symbol] = row
		}
		row.Trades++
		row.TotalAmount += te.Amount
		row.EntryValue += te.Amount * te.Entry
		row.PlannedRisk += te.Amount * math.Abs(te.Entry-te.Stop)
		row.PlannedReward += te.Amount * math.Abs(te.TP-te.Entry)
		row.ConfidenceSum += te.Confidence
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if len(aggs) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(aggs))
	for k := range aggs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	outPath := summaryCSVPath(t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	defer w.Flush()
	headers := []string{"symbol", "trades", "total_amount", "avg_entry", "planned_risk", "planned_reward", "avg_confidence"}
	if err := w.Write(headers); err != nil {
		return "", err
	}

	var totalTrades int
	var totalRisk, totalReward float64
	for _, k := range keys {
		r := aggs[k]
		var avgEntry, avgConf float64
		if r.TotalAmount > 0 {
			avgEntry = r.EntryValue / r.TotalAmount
		}
		if r.Trades > 0 {
			avgConf = r.ConfidenceSum / float64(r.Trades)
		}
		rec := []string{
			r.Symbol,
			strconv.Itoa(r.Trades),
			fmt.Sprintf("%.6f", r.TotalAmount),
			fmt.Sprintf("%.4f", avgEntry),
			fmt.Sprintf("%.2f", r.PlannedRisk),
			fmt.Sprintf("%.2f", r.PlannedReward),
			fmt.Sprintf("%.1f", avgConf),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
		totalTrades += r.Trades
		totalRisk += r.PlannedRisk
		totalReward += r.PlannedReward
	}
	_ = w.Write([]string{"TOTAL", strconv.Itoa(totalTrades), "", "", fmt.Sprintf("%.2f", totalRisk), fmt.Sprintf("%.2f", totalReward), ""})
	return outPath, nil
}

// SummarizeToday summarizes the current UTC day.
func SummarizeToday() (string, error) { return SummarizeDay(time.Now().UTC()) }
