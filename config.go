package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppURL string `yaml:"app_url"`

	BrowserType string `yaml:"browser_type"`

	Headless        bool `yaml:"headless"`
	KeepBrowserOpen bool `yaml:"keep_browser_open"`

	DryRun    bool `yaml:"dry_run"`
	DebugMode bool `yaml:"debug_mode"`

	PageLoadTimeout int `yaml:"page_load_timeout"`

	// Locator cascade timing. Each strategy in a cascade gets its own
	// bounded attempt; presence is polled at the poll interval.
	StrategyTimeoutMs int `yaml:"strategy_timeout_ms"`
	OptionalTimeoutMs int `yaml:"optional_timeout_ms"`
	PollIntervalMs    int `yaml:"poll_interval_ms"`

	// Payment widget pacing. The hosted form validates input incrementally
	// and rejects bulk assignment, so characters are typed one at a time.
	TypingDelayMs       int `yaml:"typing_delay_ms"`
	FieldSettleDelayMs  int `yaml:"field_settle_delay_ms"`
	SubmitSettleSeconds int `yaml:"submit_settle_seconds"`

	Payment PaymentConfig `yaml:"payment"`

	Selectors SelectorConfig `yaml:"selectors"`
}

type PaymentConfig struct {
	Email      string `yaml:"email"`
	CardNumber string `yaml:"card_number"`
	ExpiryDate string `yaml:"expiry_date"` // MMYY, separators stripped before typing
	CVC        string `yaml:"cvc"`
	ZipCode    string `yaml:"zip_code"` // optional, region dependent
}

// SelectorConfig overrides the most markup-sensitive single targets. The
// multi-strategy cascades stay in code; these are the stable anchors.
type SelectorConfig struct {
	Temperature  string `yaml:"temperature"`
	CartBadge    string `yaml:"cart_badge"`
	CartButton   string `yaml:"cart_button"`
	CartTotal    string `yaml:"cart_total"`
	PaymentFrame string `yaml:"payment_frame"`
}

func DefaultConfig() *Config {
	return &Config{
		AppURL:      "https://weathershopper.pythonanywhere.com/",
		BrowserType: "chrome",

		Headless:        false,
		KeepBrowserOpen: false,

		DryRun:    false,
		DebugMode: false,

		PageLoadTimeout: 30,

		StrategyTimeoutMs: 5000,
		OptionalTimeoutMs: 1500,
		PollIntervalMs:    100,

		TypingDelayMs:       60,
		FieldSettleDelayMs:  500,
		SubmitSettleSeconds: 5,

		Payment: PaymentConfig{
			Email:      "test@weathershopper.com",
			CardNumber: "4242424242424242",
			ExpiryDate: "1226",
			CVC:        "123",
			ZipCode:    "75500",
		},

		Selectors: SelectorConfig{
			Temperature:  "#temperature",
			CartBadge:    "#cart",
			CartButton:   "button[onclick='goToCart()']",
			CartTotal:    "#total",
			PaymentFrame: `iframe[name*="stripe_checkout"]`,
		},
	}
}

// Validate rejects configurations the flow cannot run with.
func (c *Config) Validate() error {
	if c.AppURL == "" {
		return fmt.Errorf("app_url must not be empty")
	}
	switch c.BrowserType {
	case "chrome", "chromium", "edge":
	default:
		return fmt.Errorf("unsupported browser_type %q (use chrome, chromium or edge)", c.BrowserType)
	}
	if c.Payment.Email == "" || c.Payment.CardNumber == "" ||
		c.Payment.ExpiryDate == "" || c.Payment.CVC == "" {
		return fmt.Errorf("payment details are incomplete (email, card_number, expiry_date and cvc are required)")
	}
	if c.TypingDelayMs < 0 || c.PollIntervalMs <= 0 {
		return fmt.Errorf("timing values must be positive")
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.Save(path); err != nil {
			return nil, err
		}
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// timing helpers keep the duration math in one place

func (c *Config) strategyTimeout() time.Duration {
	return time.Duration(c.StrategyTimeoutMs) * time.Millisecond
}

func (c *Config) optionalTimeout() time.Duration {
	return time.Duration(c.OptionalTimeoutMs) * time.Millisecond
}

func (c *Config) pollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func (c *Config) typingDelay() time.Duration {
	return time.Duration(c.TypingDelayMs) * time.Millisecond
}

func (c *Config) fieldSettleDelay() time.Duration {
	return time.Duration(c.FieldSettleDelayMs) * time.Millisecond
}

func (c *Config) submitSettleDelay() time.Duration {
	return time.Duration(c.SubmitSettleSeconds) * time.Second
}
func (c *Config) pageLoadTimeout() time.Duration {
	return time.Duration(c.PageLoadTimeout) * time.Second
}
