package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"pullback-bot/internal/store"
	"pullback-bot/internal/types"
)

type fakeEngine struct {
	mu     sync.Mutex
	steps  map[string]int
	failOn map[string]bool
	panics map[string]bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		steps:  make(map[string]int),
		failOn: make(map[string]bool),
		panics: make(map[string]bool),
	}
}

func (f *fakeEngine) Step(_ context.Context, symbol string) (*types.ScanResult, error) {
	f.mu.Lock()
	f.steps[symbol]++
	f.mu.Unlock()
	if f.panics[symbol] {
		panic("indicator out of range")
	}
	if f.failOn[symbol] {
		return nil, errors.New("venue unreachable")
	}
	return &types.ScanResult{
		Symbol:   symbol,
		Decision: types.Decision{Outcome: types.DecisionNoTrade, Reason: "strategy conditions not met"},
		Time:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (f *fakeEngine) stepCount(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.steps[symbol]
}

func schedConfig(symbols ...string) *store.Config {
	return &store.Config{Symbols: symbols, ScanSeconds: 60}
}

func TestCycleIsolatesInstrumentFailures(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BOT_LOG_DIR", dir)

	eng := newFakeEngine()
	eng.failOn["AAAUSDT"] = true
	eng.panics["CCCUSDT"] = true
	s := New(schedConfig("AAAUSDT", "BBBUSDT", "CCCUSDT"), eng)

	s.runCycle(context.Background())

	for _, sym := range []string{"AAAUSDT", "BBBUSDT", "CCCUSDT"} {
		if got := eng.stepCount(sym); got != 1 {
			t.Errorf("%s: expected 1 step, got %d", sym, got)
		}
	}

	// The healthy instrument's result must still land on disk even
	// though a sibling errored and another panicked in the same cycle.
	b, err := os.ReadFile(filepath.Join(dir, "BBBUSDT.json"))
	if err != nil {
		t.Fatalf("healthy instrument left no record: %v", err)
	}
	if !strings.Contains(string(b), types.DecisionNoTrade) {
		t.Errorf("unexpected record: %s", b)
	}

	// The failing instrument gets an error record, not silence.
	b, err = os.ReadFile(filepath.Join(dir, "AAAUSDT.json"))
	if err != nil {
		t.Fatalf("failing instrument left no record: %v", err)
	}
	if !strings.Contains(string(b), "venue unreachable") {
		t.Errorf("expected error carried in record, got %s", b)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Setenv("BOT_LOG_DIR", t.TempDir())

	eng := newFakeEngine()
	s := New(schedConfig("AAAUSDT"), eng)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Give the immediate first cycle a moment, then stop.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}

	if got := eng.stepCount("AAAUSDT"); got != 1 {
		t.Errorf("expected exactly the startup cycle, got %d steps", got)
	}
}
