// Package gate packages a detected setup into a feature snapshot,
// invokes the arbiter and validates its response. It is the designed
// failure-absorption boundary: whatever the arbiter returns — garbage,
// markdown, a transport error — the outcome is a normal Decision
// value, never an error and never a panic.
package gate

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"pullback-bot/internal/interfaces"
	"pullback-bot/internal/logger"
	"pullback-bot/internal/trace"
	"pullback-bot/internal/types"
)

type Gate struct {
	arbiter interfaces.Arbiter
}

func New(arbiter interfaces.Arbiter) *Gate {
	return &Gate{arbiter: arbiter}
}

// Evaluate asks the arbiter once; a malformed response is a
// conservative veto, not a reason to retry.
func (g *Gate) Evaluate(ctx context.Context, features types.Features) types.Decision {
	ctx, span := trace.StartSpan(ctx, "gate.Evaluate")
	defer span.End()

	raw, err := g.arbiter.Ask(ctx, features)
	if err != nil {
		logger.Warn(ctx, "Arbiter call failed, vetoing setup",
			"symbol", features.Symbol, "error", err)
		return Fallback(err.Error())
	}
	return Parse(raw)
}

// Fallback is the conservative NO_TRADE decision used whenever the
// arbiter response cannot be trusted.
func Fallback(detail string) types.Decision {
	return types.Decision{
		Outcome:    types.DecisionNoTrade,
		Confidence: 0,
		Reason:     "arbiter parsing failure: " + detail,
	}
}

// Parse extracts and validates the decision object from free-form
// arbiter text.
func Parse(raw string) types.Decision {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")

	obj, err := firstJSONObject(cleaned)
	if err != nil {
		return Fallback(err.Error())
	}

	var d types.Decision
	if err := json.Unmarshal([]byte(obj), &d); err != nil {
		return Fallback(err.Error())
	}

	d.Outcome = strings.ToUpper(strings.TrimSpace(d.Outcome))
	if d.Outcome != types.DecisionTrade && d.Outcome != types.DecisionNoTrade {
		return Fallback("invalid decision field: " + d.Outcome)
	}

	d.Side = strings.ToUpper(strings.TrimSpace(d.Side))
	if d.Outcome == types.DecisionNoTrade {
		d.Side = ""
	} else if d.Side != types.SideLong && d.Side != types.SideShort {
		return Fallback("invalid side field: " + d.Side)
	}

	if d.Confidence < 0 {
		d.Confidence = 0
	}
	if d.Confidence > 100 {
		d.Confidence = 100
	}
	return d
}

// firstJSONObject returns the first balanced top-level JSON object in
// the text, tracking strings and escapes so braces inside values do
// not confuse the depth count.
func firstJSONObject(s string) (string, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", errors.New("no JSON object found in response")
}
