// Package llm holds the prompt contract shared by the arbiter providers.
package llm

import (
	"encoding/json"
	"fmt"

	"pullback-bot/internal/types"
)

// Schema is the only output the arbiter is allowed to produce.
const Schema = `{"decision": "TRADE" | "NO_TRADE", "side": "LONG" | "SHORT" | null, "confidence": 0-100, "reason": "short, precise explanation"}`

const promptTemplate = `You are a professional crypto trading risk gatekeeper.

Your task is NOT to find trades.
Your task is to EVALUATE the provided setup and decide whether it should be traded.

You must be conservative.
If anything is unclear, risky, or misaligned, choose NO_TRADE.

You are given REAL indicator values and a PREDEFINED strategy signal.
Do NOT rely on general crypto knowledge alone.

Rules:
- Only approve trades with clear confluence
- Risk-reward must be acceptable (RR >= 2)
- Trend alignment must be respected
- Avoid overconfidence
- Prefer NO_TRADE over marginal trades

Input data (JSON):
%s

Return ONLY valid JSON in this EXACT schema:

%s

Constraints:
- If decision is NO_TRADE, side MUST be null
- Confidence above 70 only for very strong setups
- Do not include markdown or extra text`

// BuildPrompt renders the gatekeeper prompt for one feature snapshot.
func BuildPrompt(features types.Features) (string, error) {
	fb, err := json.MarshalIndent(features, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal features: %w", err)
	}
	return fmt.Sprintf(promptTemplate, string(fb), Schema), nil
}
