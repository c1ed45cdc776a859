package gate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pullback-bot/internal/types"
)

func TestParse_CleanJSON(t *testing.T) {
	d := Parse(`{"decision":"TRADE","side":"LONG","confidence":72,"reason":"strong confluence"}`)
	if d.Outcome != types.DecisionTrade {
		t.Fatalf("expected TRADE, got %s", d.Outcome)
	}
	if d.Side != types.SideLong {
		t.Errorf("expected LONG, got %s", d.Side)
	}
	if d.Confidence != 72 {
		t.Errorf("expected confidence 72, got %v", d.Confidence)
	}
}

func TestParse_MarkdownFence(t *testing.T) {
	raw := "Here is my assessment:\n```json\n{\"decision\": \"NO_TRADE\", \"side\": null, \"confidence\": 10, \"reason\": \"weak\"}\n```"
	d := Parse(raw)
	if d.Outcome != types.DecisionNoTrade {
		t.Fatalf("expected NO_TRADE, got %s", d.Outcome)
	}
	if d.Side != "" {
		t.Errorf("NO_TRADE must clear side, got %q", d.Side)
	}
}

func TestParse_NestedBraces(t *testing.T) {
	raw := `prefix {"decision":"TRADE","side":"LONG","confidence":60,"reason":"rr {2.2} ok"} suffix`
	d := Parse(raw)
	if d.Outcome != types.DecisionTrade {
		t.Fatalf("expected TRADE, got %s (%s)", d.Outcome, d.Reason)
	}
	if !strings.Contains(d.Reason, "{2.2}") {
		t.Errorf("reason mangled: %q", d.Reason)
	}
}

func TestParse_MalformedInputsFallBack(t *testing.T) {
	cases := []string{
		"",
		"the market looks great, go long!",
		"{not actually json}",
		`{"decision":"MAYBE","side":"LONG","confidence":50,"reason":"?"}`,
		`{"decision":"TRADE","side":"SIDEWAYS","confidence":50,"reason":"?"}`,
		`{"decision":`,
	}
	for _, raw := range cases {
		d := Parse(raw)
		if d.Outcome != types.DecisionNoTrade {
			t.Errorf("%q: expected NO_TRADE fallback, got %s", raw, d.Outcome)
		}
		if d.Side != "" {
			t.Errorf("%q: fallback side must be empty, got %q", raw, d.Side)
		}
		if d.Confidence != 0 {
			t.Errorf("%q: fallback confidence must be 0, got %v", raw, d.Confidence)
		}
		if d.Reason == "" {
			t.Errorf("%q: fallback reason must be non-empty", raw)
		}
	}
}

func TestParse_ConfidenceClamped(t *testing.T) {
	d := Parse(`{"decision":"TRADE","side":"LONG","confidence":250,"reason":"x"}`)
	if d.Confidence != 100 {
		t.Errorf("expected clamp to 100, got %v", d.Confidence)
	}
	d = Parse(`{"decision":"TRADE","side":"LONG","confidence":-5,"reason":"x"}`)
	if d.Confidence != 0 {
		t.Errorf("expected clamp to 0, got %v", d.Confidence)
	}
}

func TestParse_Idempotent(t *testing.T) {
	raw := "complete garbage"
	first := Parse(raw)
	second := Parse(raw)
	if first != second {
		t.Errorf("fallback not idempotent: %+v vs %+v", first, second)
	}
}

type failingArbiter struct{}

func (failingArbiter) Ask(context.Context, types.Features) (string, error) {
	return "", errors.New("connection reset")
}

func TestEvaluate_TransportErrorVetoes(t *testing.T) {
	g := New(failingArbiter{})
	d := g.Evaluate(context.Background(), types.Features{Symbol: "ETHUSDT"})
	if d.Outcome != types.DecisionNoTrade {
		t.Fatalf("expected NO_TRADE on transport error, got %s", d.Outcome)
	}
	if d.Reason == "" {
		t.Error("expected a non-empty veto reason")
	}
}
