package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode        string   `yaml:"mode"`         // DRY_RUN or LIVE
	DataSource  string   `yaml:"data_source"`  // STATIC or LIVE
	Symbols     []string `yaml:"symbols"`      // e.g. ETHUSDT
	ScanSeconds int      `yaml:"scan_seconds"` // interval between cycles

	// Per external call (candles, arbiter, orders). A stalled venue or
	// model call fails that instrument's cycle instead of hanging it.
	CallTimeoutSeconds int `yaml:"call_timeout_seconds"`

	Timeframes struct {
		Trend    string `yaml:"trend"`    // higher-timeframe gate, default 1h
		Pullback string `yaml:"pullback"` // RSI pullback check, default 15m
		Entry    string `yaml:"entry"`    // trigger bar, default 5m
	} `yaml:"timeframes"`
	CandleLimit int `yaml:"candle_limit"`

	Risk struct {
		PerTradeFraction float64 `yaml:"per_trade_fraction"` // fraction of balance risked, (0,1)
		MinRR            float64 `yaml:"min_rr"`
		MinNotional      float64 `yaml:"min_notional"`
		QuoteAsset       string  `yaml:"quote_asset"`
		PaperBalance     float64 `yaml:"paper_balance"` // balance used in DRY_RUN
	} `yaml:"risk"`

	Exchange struct {
		Testnet bool `yaml:"testnet"`
	} `yaml:"exchange"`

	LLM struct {
		Provider    string  `yaml:"provider"` // OPENAI, CLAUDE or empty
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float32 `yaml:"temperature"`
	} `yaml:"llm"`

	Metrics struct {
		Addr string `yaml:"addr"` // empty disables the endpoint
	} `yaml:"metrics"`
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if c.DataSource != "STATIC" && c.DataSource != "LIVE" {
		return fmt.Errorf("invalid data_source '%s': must be 'STATIC' or 'LIVE'", c.DataSource)
	}
	if len(c.Symbols) == 0 {
		return errors.New("symbols cannot be empty")
	}
	if c.Risk.PerTradeFraction <= 0 || c.Risk.PerTradeFraction >= 1 {
		return fmt.Errorf("risk.per_trade_fraction must be in (0,1), got %.4f", c.Risk.PerTradeFraction)
	}
	if c.Risk.MinNotional < 0 {
		return fmt.Errorf("risk.min_notional cannot be negative, got %.2f", c.Risk.MinNotional)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.ScanSeconds == 0 {
		c.ScanSeconds = 60
	}
	if c.CallTimeoutSeconds == 0 {
		c.CallTimeoutSeconds = 30
	}
	if c.DataSource == "" {
		c.DataSource = "STATIC"
	}
	if c.Timeframes.Trend == "" {
		c.Timeframes.Trend = "1h"
	}
	if c.Timeframes.Pullback == "" {
		c.Timeframes.Pullback = "15m"
	}
	if c.Timeframes.Entry == "" {
		c.Timeframes.Entry = "5m"
	}
	if c.CandleLimit == 0 {
		c.CandleLimit = 200
	}
	if c.Risk.MinRR == 0 {
		c.Risk.MinRR = 2.0
	}
	if c.Risk.QuoteAsset == "" {
		c.Risk.QuoteAsset = "USDT"
	}
	if c.Risk.PaperBalance == 0 {
		c.Risk.PaperBalance = 10000
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
