package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"pullback-bot/internal/llm"
	"pullback-bot/internal/store"
	"pullback-bot/internal/trace"
	"pullback-bot/internal/types"
)

// Arbiter implements the gatekeeper against the Anthropic messages API.
type Arbiter struct {
	cfg      *store.Config
	endpoint string
}

func NewArbiter(cfg *store.Config) *Arbiter {
	endpoint := "https://api.anthropic.com/v1/messages"
	// Proxy/bedrock setups override via CLAUDE_API_ENDPOINT
	if ep := os.Getenv("CLAUDE_API_ENDPOINT"); ep != "" {
		endpoint = ep
	}
	return &Arbiter{cfg: cfg, endpoint: endpoint}
}

func (a *Arbiter) Ask(ctx context.Context, features types.Features) (string, error) {
	ctx, span := trace.StartSpan(ctx, "claude-api-call")
	defer span.End()

	apiKey := os.Getenv("CLAUDE_API_KEY")
	if apiKey == "" {
		return "", errors.New("CLAUDE_API_KEY missing")
	}

	prompt, err := llm.BuildPrompt(features)
	if err != nil {
		return "", err
	}

	maxTokens := a.cfg.LLM.MaxTokens
	if maxTokens == 0 {
		maxTokens = 200
	}

	reqBody := map[string]any{
		"model":       a.cfg.LLM.Model,
		"messages":    []map[string]string{{"role": "user", "content": prompt}},
		"max_tokens":  maxTokens,
		"temperature": a.cfg.LLM.Temperature,
	}

	bb, _ := json.Marshal(reqBody)
	req, _ := http.NewRequestWithContext(ctx, "POST", a.endpoint, bytes.NewReader(bb))
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("claude http %d: %s", resp.StatusCode, string(body))
	}

	var r struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", errors.New("empty claude response")
	}
	return out, nil
}
