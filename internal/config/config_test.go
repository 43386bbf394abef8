package config

import (
	"os"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.LLMProviders) == 0 {
		t.Fatal("expected default LLM providers")
	}
	if cfg.LLMProviders["text"].APIKey != "${OPENROUTER_API_KEY}" {
		t.Error("expected openrouter API key placeholder")
	}
	if cfg.Pipeline.TextConfidenceThreshold != 0.65 {
		t.Errorf("text threshold = %v, want 0.65", cfg.Pipeline.TextConfidenceThreshold)
	}
	if cfg.Pipeline.VisionConfidenceThreshold != 0.70 {
		t.Errorf("vision threshold = %v, want 0.70", cfg.Pipeline.VisionConfidenceThreshold)
	}
	if cfg.Defaults.MaxWorkers <= 0 {
		t.Error("expected positive max_workers default")
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("resolves environment variable", func(t *testing.T) {
		os.Setenv("TEST_API_KEY", "secret123")
		defer os.Unsetenv("TEST_API_KEY")

		result := ResolveEnvVars("${TEST_API_KEY}")
		if result != "secret123" {
			t.Errorf("expected secret123, got %s", result)
		}
	})

	t.Run("returns empty for missing env var", func(t *testing.T) {
		result := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}")
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})

	t.Run("leaves literal values unchanged", func(t *testing.T) {
		result := ResolveEnvVars("literal-value")
		if result != "literal-value" {
			t.Errorf("expected literal-value, got %s", result)
		}
	})
}

func TestToProviderRegistryConfig(t *testing.T) {
	os.Setenv("TEST_OR_KEY", "or-key-123")
	defer os.Unsetenv("TEST_OR_KEY")

	cfg := &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"text": {Type: "openrouter", Model: "m", APIKey: "${TEST_OR_KEY}", RateLimit: 100, Enabled: true},
		},
		OCRProviders: map[string]OCRProviderCfg{
			"mistral": {Type: "mistral-ocr", APIKey: "literal-key", RateLimit: 6.0, Enabled: true},
		},
	}

	reg := cfg.ToProviderRegistryConfig()
	if reg.LLMProviders["text"].APIKey != "or-key-123" {
		t.Errorf("resolved key = %s", reg.LLMProviders["text"].APIKey)
	}
	if reg.OCRProviders["mistral"].APIKey != "literal-key" {
		t.Errorf("literal key = %s", reg.OCRProviders["mistral"].APIKey)
	}
}
