package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != "1.0" {
		t.Errorf("Version = %q, want 1.0", cfg.Version)
	}
	if cfg.AI.Provider != "ollama" {
		t.Errorf("AI.Provider = %q, want ollama", cfg.AI.Provider)
	}
	if cfg.AI.EmbedModel != "nomic-embed-text" {
		t.Errorf("AI.EmbedModel = %q", cfg.AI.EmbedModel)
	}
	if cfg.Chunking.MaxTokens != 600 || cfg.Chunking.OverlapTokens != 50 {
		t.Errorf("chunking defaults = %d/%d, want 600/50",
			cfg.Chunking.MaxTokens, cfg.Chunking.OverlapTokens)
	}
	if cfg.Matching.TopK != 5 {
		t.Errorf("Matching.TopK = %d, want 5", cfg.Matching.TopK)
	}
	if cfg.Extract.OCRTimeout != 60*time.Second {
		t.Errorf("Extract.OCRTimeout = %v", cfg.Extract.OCRTimeout)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid provider",
			modify:  func(c *Config) { c.AI.Provider = "bedrock" },
			wantErr: true,
		},
		{
			name:    "negative retries",
			modify:  func(c *Config) { c.AI.MaxRetries = -1 },
			wantErr: true,
		},
		{
			name:    "zero max tokens",
			modify:  func(c *Config) { c.Chunking.MaxTokens = 0 },
			wantErr: true,
		},
		{
			name: "overlap not smaller than max tokens",
			modify: func(c *Config) {
				c.Chunking.MaxTokens = 100
				c.Chunking.OverlapTokens = 100
			},
			wantErr: true,
		},
		{
			name:    "zero top_k",
			modify:  func(c *Config) { c.Matching.TopK = 0 },
			wantErr: true,
		},
		{
			name:    "invalid output format",
			modify:  func(c *Config) { c.Output.DefaultFormat = "xml" },
			wantErr: true,
		},
		{
			name:    "csv output format",
			modify:  func(c *Config) { c.Output.DefaultFormat = "csv" },
			wantErr: false,
		},
		{
			name:    "invalid color mode",
			modify:  func(c *Config) { c.Output.ColorMode = "sometimes" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
