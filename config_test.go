package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	if config.BrowserType != "chrome" {
		t.Errorf("Expected BrowserType to be 'chrome', got '%s'", config.BrowserType)
	}

	if config.AppURL != "https://weathershopper.pythonanywhere.com/" {
		t.Errorf("Unexpected default AppURL: %s", config.AppURL)
	}

	if config.PageLoadTimeout != 30 {
		t.Errorf("Expected PageLoadTimeout to be 30, got %d", config.PageLoadTimeout)
	}

	if config.TypingDelayMs <= 0 {
		t.Errorf("Expected a positive typing delay, got %d", config.TypingDelayMs)
	}

	if config.Payment.CardNumber != "4242424242424242" {
		t.Errorf("Unexpected default card number: %s", config.Payment.CardNumber)
	}

	if config.Selectors.Temperature == "" {
		t.Error("Expected Temperature selector to be set")
	}

	if config.Selectors.PaymentFrame == "" {
		t.Error("Expected PaymentFrame selector to be set")
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Default config should validate, got: %v", err)
	}
}

func TestConfigSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test-config.yaml")

	config := DefaultConfig()
	config.AppURL = "https://example.com/shop"
	config.Headless = true
	config.TypingDelayMs = 90
	config.Payment.ZipCode = ""

	if err := config.Save(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loadedConfig, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loadedConfig.AppURL != config.AppURL {
		t.Errorf("Expected AppURL to be '%s', got '%s'", config.AppURL, loadedConfig.AppURL)
	}

	if loadedConfig.Headless != config.Headless {
		t.Errorf("Expected Headless to be %v, got %v", config.Headless, loadedConfig.Headless)
	}

	if loadedConfig.TypingDelayMs != config.TypingDelayMs {
		t.Errorf("Expected TypingDelayMs to be %d, got %d", config.TypingDelayMs, loadedConfig.TypingDelayMs)
	}

	if loadedConfig.Payment.ZipCode != "" {
		t.Errorf("Expected empty ZipCode, got '%s'", loadedConfig.Payment.ZipCode)
	}
}

func TestLoadConfigCreatesDefaultIfMissing(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "new-config.yaml")

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config == nil {
		t.Fatal("LoadConfig returned nil")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created automatically")
	}

	if config.BrowserType != "chrome" {
		t.Errorf("Expected default BrowserType to be 'chrome', got '%s'", config.BrowserType)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid-config.yaml")

	invalidYAML := "invalid: yaml: content: [unclosed"
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("Failed to write invalid YAML: %v", err)
	}

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Error("Expected error when loading invalid YAML, got nil")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "default config is valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "empty app url",
			mutate:  func(c *Config) { c.AppURL = "" },
			wantErr: true,
		},
		{
			name:    "unknown browser family",
			mutate:  func(c *Config) { c.BrowserType = "netscape" },
			wantErr: true,
		},
		{
			name:    "edge is a known family",
			mutate:  func(c *Config) { c.BrowserType = "edge" },
			wantErr: false,
		},
		{
			name:    "chromium is a known family",
			mutate:  func(c *Config) { c.BrowserType = "chromium" },
			wantErr: false,
		},
		{
			name:    "missing card number",
			mutate:  func(c *Config) { c.Payment.CardNumber = "" },
			wantErr: true,
		},
		{
			name:    "missing zip code is fine",
			mutate:  func(c *Config) { c.Payment.ZipCode = "" },
			wantErr: false,
		},
		{
			name:    "zero poll interval",
			mutate:  func(c *Config) { c.PollIntervalMs = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
