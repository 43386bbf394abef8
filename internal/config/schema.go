package config

// Config holds veridoc configuration.
type Config struct {
	OCRProviders map[string]OCRProviderCfg `mapstructure:"ocr_providers" yaml:"ocr_providers"`
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
	Pipeline     PipelineCfg               `mapstructure:"pipeline" yaml:"pipeline"`
	Server       ServerCfg                 `mapstructure:"server" yaml:"server"`
}

// OCRProviderCfg configures an OCR provider.
type OCRProviderCfg struct {
	Type      string  `mapstructure:"type" yaml:"type"`             // "mistral-ocr"
	Model     string  `mapstructure:"model" yaml:"model"`           // Model name
	APIKey    string  `mapstructure:"api_key" yaml:"api_key"`       // API key (supports ${ENV_VAR} syntax)
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"` // Requests per second
	Enabled   bool    `mapstructure:"enabled" yaml:"enabled"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type      string `mapstructure:"type" yaml:"type"`             // "openrouter", "openai"
	Model     string `mapstructure:"model" yaml:"model"`           // Model name
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`       // API key (supports ${ENV_VAR} syntax)
	RateLimit int    `mapstructure:"rate_limit" yaml:"rate_limit"` // Requests per minute
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default provider selections.
type DefaultsCfg struct {
	OCRProvider    string `mapstructure:"ocr_provider" yaml:"ocr_provider"`       // OCR provider name
	TextProvider   string `mapstructure:"text_provider" yaml:"text_provider"`     // LLM for the text strategy
	VisionProvider string `mapstructure:"vision_provider" yaml:"vision_provider"` // LLM for the vision strategy
	MaxWorkers     int    `mapstructure:"max_workers" yaml:"max_workers"`         // Max concurrent segment workers
}

// PipelineCfg holds the extraction pipeline tunables.
type PipelineCfg struct {
	// Confidence thresholds for filtering extracted fields, per strategy.
	TextConfidenceThreshold   float64 `mapstructure:"text_confidence_threshold" yaml:"text_confidence_threshold"`
	VisionConfidenceThreshold float64 `mapstructure:"vision_confidence_threshold" yaml:"vision_confidence_threshold"`

	// Confidence multipliers applied when a field fails source grounding.
	TextUngroundedMultiplier   float64 `mapstructure:"text_ungrounded_multiplier" yaml:"text_ungrounded_multiplier"`
	VisionUngroundedMultiplier float64 `mapstructure:"vision_ungrounded_multiplier" yaml:"vision_ungrounded_multiplier"`

	// Minimum word overlap ratio for accepting a rewritten field value.
	WordOverlapRatio float64 `mapstructure:"word_overlap_ratio" yaml:"word_overlap_ratio"`

	// Segmentation limits.
	SingleSegmentMaxChars int `mapstructure:"single_segment_max_chars" yaml:"single_segment_max_chars"`
	LongTextChars         int `mapstructure:"long_text_chars" yaml:"long_text_chars"`
	MinSegmentChars       int `mapstructure:"min_segment_chars" yaml:"min_segment_chars"`
}

// ServerCfg configures the HTTP API server.
type ServerCfg struct {
	Host            string `mapstructure:"host" yaml:"host"`
	Port            int    `mapstructure:"port" yaml:"port"`
	MaxUploadSizeMB int    `mapstructure:"max_upload_size_mb" yaml:"max_upload_size_mb"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		OCRProviders: map[string]OCRProviderCfg{
			"mistral": {
				Type:      "mistral-ocr",
				APIKey:    "${MISTRAL_API_KEY}",
				RateLimit: 6.0,
				Enabled:   true,
			},
		},
		LLMProviders: map[string]LLMProviderCfg{
			"text": {
				Type:      "openrouter",
				Model:     "meta-llama/llama-3.3-70b-instruct",
				APIKey:    "${OPENROUTER_API_KEY}",
				RateLimit: 150,
				Enabled:   true,
			},
			"vision": {
				Type:      "openai",
				Model:     "gpt-4o-mini",
				APIKey:    "${OPENAI_API_KEY}",
				RateLimit: 300,
				Enabled:   true,
			},
		},
		Defaults: DefaultsCfg{
			OCRProvider:    "mistral",
			TextProvider:   "text",
			VisionProvider: "vision",
			MaxWorkers:     4,
		},
		Pipeline: PipelineCfg{
			TextConfidenceThreshold:    0.65,
			VisionConfidenceThreshold:  0.70,
			TextUngroundedMultiplier:   0.5,
			VisionUngroundedMultiplier: 0.4,
			WordOverlapRatio:           0.6,
			SingleSegmentMaxChars:      500,
			LongTextChars:              3000,
			MinSegmentChars:            30,
		},
		Server: ServerCfg{
			Host:            "0.0.0.0",
			Port:            8080,
			MaxUploadSizeMB: 25,
		},
	}
}

// GetOCRProvider returns an OCR provider config by name.
func (c *Config) GetOCRProvider(name string) (OCRProviderCfg, bool) {
	cfg, ok := c.OCRProviders[name]
	return cfg, ok
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// EnabledLLMProviders returns all enabled LLM providers.
func (c *Config) EnabledLLMProviders() map[string]LLMProviderCfg {
	result := make(map[string]LLMProviderCfg)
	for name, cfg := range c.LLMProviders {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}
