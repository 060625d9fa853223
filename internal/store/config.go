package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Backend struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		RetryAttempts  uint   `yaml:"retry_attempts"`
	} `yaml:"backend"`
	Poll struct {
		OrdersSeconds    int `yaml:"orders_seconds"`
		PositionsSeconds int `yaml:"positions_seconds"`
		HoldingsSeconds  int `yaml:"holdings_seconds"`
		SummarySeconds   int `yaml:"summary_seconds"`
	} `yaml:"poll"`
	Search struct {
		RatePerSecond float64 `yaml:"rate_per_second"`
		Burst         int     `yaml:"burst"`
		MaxResults    int     `yaml:"max_results"`
	} `yaml:"search"`
	Dispatch struct {
		MaxConcurrent int `yaml:"max_concurrent"`
	} `yaml:"dispatch"`
	ActionLog struct {
		Dir           string `yaml:"dir"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"action_log"`
	Forms struct {
		DraftPath string `yaml:"draft_path"`
	} `yaml:"forms"`
}

func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("backend.base_url cannot be empty")
	}
	if c.Backend.TimeoutSeconds <= 0 {
		return fmt.Errorf("backend.timeout_seconds must be positive, got %d", c.Backend.TimeoutSeconds)
	}
	if c.Poll.OrdersSeconds <= 0 {
		return fmt.Errorf("poll.orders_seconds must be positive, got %d", c.Poll.OrdersSeconds)
	}
	if c.Search.RatePerSecond <= 0 {
		return fmt.Errorf("search.rate_per_second must be positive, got %.2f", c.Search.RatePerSecond)
	}
	if c.Dispatch.MaxConcurrent <= 0 {
		return fmt.Errorf("dispatch.max_concurrent must be positive, got %d", c.Dispatch.MaxConcurrent)
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

	if c.Backend.TimeoutSeconds == 0 {
		c.Backend.TimeoutSeconds = 15
	}
	if c.Backend.RetryAttempts == 0 {
		c.Backend.RetryAttempts = 3
	}
	if c.Poll.OrdersSeconds == 0 {
		c.Poll.OrdersSeconds = 5
	}
	if c.Poll.PositionsSeconds == 0 {
		c.Poll.PositionsSeconds = 5
	}
	if c.Poll.HoldingsSeconds == 0 {
		c.Poll.HoldingsSeconds = 30
	}
	if c.Poll.SummarySeconds == 0 {
		c.Poll.SummarySeconds = 10
	}
	if c.Search.RatePerSecond == 0 {
		c.Search.RatePerSecond = 4
	}
	if c.Search.Burst == 0 {
		c.Search.Burst = 2
	}
	if c.Search.MaxResults == 0 {
		c.Search.MaxResults = 25
	}
	if c.Dispatch.MaxConcurrent == 0 {
		c.Dispatch.MaxConcurrent = 8
	}
	if c.ActionLog.Dir == "" {
		c.ActionLog.Dir = "action_logs"
	}
	if c.ActionLog.RetentionDays == 0 {
		c.ActionLog.RetentionDays = 30
	}
	if c.Forms.DraftPath == "" {
		c.Forms.DraftPath = "trade_draft.json"
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
