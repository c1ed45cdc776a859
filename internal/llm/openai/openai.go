package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"pullback-bot/internal/llm"
	"pullback-bot/internal/store"
	"pullback-bot/internal/trace"
	"pullback-bot/internal/types"
)

type Arbiter struct {
	cfg *store.Config
}

func NewArbiter(cfg *store.Config) *Arbiter {
	return &Arbiter{cfg: cfg}
}

// Ask sends the feature snapshot to the chat completions API and
// returns the raw model text. Contract validation belongs to the gate.
func (a *Arbiter) Ask(ctx context.Context, features types.Features) (string, error) {
	ctx, span := trace.StartSpan(ctx, "openai-api-call")
	defer span.End()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", errors.New("OPENAI_API_KEY missing")
	}

	prompt, err := llm.BuildPrompt(features)
	if err != nil {
		return "", err
	}

	model := a.cfg.LLM.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	maxTokens := a.cfg.LLM.MaxTokens
	if maxTokens == 0 {
		maxTokens = 200
	}

	body := map[string]any{
		"model":       model,
		"messages":    []map[string]string{{"role": "user", "content": prompt}},
		"temperature": a.cfg.LLM.Temperature,
		"max_tokens":  maxTokens,
	}
	bb, _ := json.Marshal(body)

	req, _ := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/chat/completions", bytes.NewReader(bb))
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("openai http %d", resp.StatusCode)
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", err
	}
	if len(r.Choices) == 0 {
		return "", errors.New("no choices")
	}

	return strings.TrimSpace(r.Choices[0].Message.Content), nil
}
