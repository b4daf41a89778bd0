package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Locale struct {
	translations map[string]string
	locale       string
}

var globalLocale *Locale

// InitLocale initializes the global locale system
func InitLocale() error {
	locale := DetectSystemLocale()

	l, err := LoadLocale(locale)
	if err != nil {
		// Fallback to English
		l, err = LoadLocale("en_US")
		if err != nil {
			// No locale files at all; T() echoes keys, which is usable.
			return fmt.Errorf("failed to load fallback locale en_US: %w", err)
		}
	}

	globalLocale = l
	return nil
}

// DetectSystemLocale detects the user's system locale from the usual
// environment variables, falling back to en_US.
func DetectSystemLocale() string {
	for _, env := range []string{"LANG", "LC_ALL", "LC_MESSAGES"} {
		if locale := os.Getenv(env); locale != "" {
			// Typically "en_US.UTF-8"
			parts := strings.Split(locale, ".")
			if len(parts) > 0 && parts[0] != "" {
				return parts[0]
			}
		}
	}
	return "en_US"
}

// LoadLocale loads a locale file from a lang/ directory next to the
// executable, or from the working directory during development.
func LoadLocale(locale string) (*Locale, error) {
	candidates := []string{filepath.Join("lang", locale+".yaml")}
	if exePath, err := os.Executable(); err == nil {
		candidates = append([]string{
			filepath.Join(filepath.Dir(exePath), "lang", locale+".yaml"),
		}, candidates...)
	}

	var lastErr error
	for _, localeFile := range candidates {
		data, err := os.ReadFile(localeFile)
		if err != nil {
			lastErr = err
			continue
		}

		var translations map[string]string
		if err := yaml.Unmarshal(data, &translations); err != nil {
			return nil, fmt.Errorf("failed to parse locale file %s: %w", localeFile, err)
		}

		return &Locale{
			translations: translations,
			locale:       locale,
		}, nil
	}

	return nil, fmt.Errorf("failed to read locale %s: %w", locale, lastErr)
}

// T translates a key with optional parameters
// Usage: T("greeting", "name", "John") => "Hello, John!"
func T(key string, params ...interface{}) string {
	if globalLocale == nil {
		return key
	}

	translation, ok := globalLocale.translations[key]
	if !ok {
		// Return key if translation not found
		return key
	}

	// Simple parameter substitution
	if len(params) > 0 {
		return fmt.Sprintf(translation, params...)
	}

	return translation
}

// GetLocale returns the current locale code (e.g., "en_US", "ru_RU")
func GetLocale() string {
	if globalLocale == nil {
		return "en_US"
	}
	return globalLocale.locale
}
