package main

import (
	"testing"
)

func TestToLower(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello", "hello"},
		{"WORLD", "world"},
		{"MiXeD CaSe", "mixed case"},
		{"123ABC", "123abc"},
		{"", ""},
		{"already lowercase", "already lowercase"},
	}

	for _, test := range tests {
		result := toLower(test.input)
		if result != test.expected {
			t.Errorf("toLower(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		s        string
		substrs  []string
		expected bool
	}{
		{"Aloe Vera Moisturizer", []string{"aloe"}, true},
		{"Aloe Vera Moisturizer", []string{"ALOE"}, true},
		{"Aloe Vera Moisturizer", []string{"almond"}, false},
		{"Hydro Sunscreen SPF-50", []string{"spf-50"}, true},
		{"Hydro Sunscreen SPF-50", []string{"spf-30", "spf-50"}, true},
		{"Hydro Sunscreen SPF-50", []string{"spf-30", "spf-100"}, false},
		{"", []string{"test"}, false},
		{"test", []string{""}, true},
	}

	for _, test := range tests {
		result := contains(test.s, test.substrs...)
		if result != test.expected {
			t.Errorf("contains(%q, %v) = %v, expected %v", test.s, test.substrs, result, test.expected)
		}
	}
}

func TestNewSession(t *testing.T) {
	config := DefaultConfig()
	session := NewSession(config)

	if session == nil {
		t.Fatal("NewSession returned nil")
	}
	if session.config != config {
		t.Error("Session config does not match provided config")
	}
	if session.stopChan == nil {
		t.Error("Stop channel not initialized")
	}
	if session.browser != nil || session.page != nil {
		t.Error("Session must not hold a browser before Setup")
	}
}

func TestIsBrowserAliveWithoutBrowser(t *testing.T) {
	session := NewSession(DefaultConfig())

	if session.isBrowserAlive() {
		t.Error("A session without a browser must never report alive")
	}
}

func TestDebugLogRespectsDebugMode(t *testing.T) {
	// debugLog must be callable in both modes without a browser attached.
	config := DefaultConfig()
	session := NewSession(config)
	session.debugLog("debug off: %d", 1)

	config.DebugMode = true
	session.debugLog("debug on: %d", 2)
}

func TestLookPathFirstReportsConsistently(t *testing.T) {
	// Nonsense names force the rod fallback path; whatever it finds, a
	// found=true result must carry a non-empty path.
	path, found := lookPathFirst("no-such-browser-binary-a", "no-such-browser-binary-b")
	if found && path == "" {
		t.Error("lookPathFirst reported found with an empty path")
	}
}

func TestResolveBrowserBinFamilies(t *testing.T) {
	for _, family := range []string{"chrome", "chromium", "edge"} {
		path, found := resolveBrowserBin(family)
		if found && path == "" {
			t.Errorf("resolveBrowserBin(%q) reported found with an empty path", family)
		}
	}
}
