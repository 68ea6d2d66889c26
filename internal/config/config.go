package config

import (
	"fmt"
	"time"
)

// Config holds the complete application configuration
type Config struct {
	Version   string          `yaml:"version" json:"version"`
	Extract   ExtractConfig   `yaml:"extract" json:"extract"`
	Normalize NormalizeConfig `yaml:"normalize" json:"normalize"`
	Chunking  ChunkingConfig  `yaml:"chunking" json:"chunking"`
	AI        AIConfig        `yaml:"ai" json:"ai"`
	Matching  MatchingConfig  `yaml:"matching" json:"matching"`
	Answers   AnswerConfig    `yaml:"answers" json:"answers"`
	Storage   StorageConfig   `yaml:"storage" json:"storage"`
	Output    OutputConfig    `yaml:"output" json:"output"`
}

// ExtractConfig configures document text extraction
type ExtractConfig struct {
	OCREndpoint string        `yaml:"ocr_endpoint" json:"ocr_endpoint"` // external OCR service URL
	OCRTimeout  time.Duration `yaml:"ocr_timeout" json:"ocr_timeout"`   // OCR request timeout
	MaxFileSize int64         `yaml:"max_file_size" json:"max_file_size"`
}

// NormalizeConfig configures text normalization
type NormalizeConfig struct {
	StripTOC   bool `yaml:"strip_toc" json:"strip_toc"`     // strip leading table-of-contents regions
	RedactPII  bool `yaml:"redact_pii" json:"redact_pii"`   // redact emails, URLs, phone numbers
	KeepTables bool `yaml:"keep_tables" json:"keep_tables"` // keep extracted table sections in the text
}

// ChunkingConfig configures how normalized text is split
type ChunkingConfig struct {
	MaxTokens     int `yaml:"max_tokens" json:"max_tokens"`         // token budget per chunk
	OverlapTokens int `yaml:"overlap_tokens" json:"overlap_tokens"` // overlap between consecutive chunks
	Workers       int `yaml:"workers" json:"workers"`               // concurrent embedding/entity workers
}

// AIConfig configures the embedding and completion provider
type AIConfig struct {
	Provider   string        `yaml:"provider" json:"provider"`       // ollama|openai
	Model      string        `yaml:"model" json:"model"`             // completion model
	EmbedModel string        `yaml:"embed_model" json:"embed_model"` // embedding model
	Endpoint   string        `yaml:"endpoint" json:"endpoint"`       // API endpoint URL
	APIKey     string        `yaml:"api_key" json:"api_key"`         // API key (env reference supported)
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`         // request timeout
	MaxRetries int           `yaml:"max_retries" json:"max_retries"` // retry count for provider calls
}

// MatchingConfig configures question-to-chunk matching
type MatchingConfig struct {
	QuestionsPath string `yaml:"questions_path" json:"questions_path"` // question corpus file
	TopK          int    `yaml:"top_k" json:"top_k"`                   // chunks retrieved per question
	Workers       int    `yaml:"workers" json:"workers"`               // concurrent question workers
}

// AnswerConfig configures answer synthesis
type AnswerConfig struct {
	Workers     int     `yaml:"workers" json:"workers"` // concurrent completion calls
	Temperature float64 `yaml:"temperature" json:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" json:"max_tokens"` // completion length cap
}

// StorageConfig configures on-disk artifact locations
type StorageConfig struct {
	DataDir     string `yaml:"data_dir" json:"data_dir"`       // index + manifest location
	UploadDir   string `yaml:"upload_dir" json:"upload_dir"`   // watched/ingested documents
	AnswerDir   string `yaml:"answer_dir" json:"answer_dir"`   // generated answer artifacts
	TempDir     string `yaml:"temp_dir" json:"temp_dir"`       // intermediate artifacts
	HistoryPath string `yaml:"history_path" json:"history_path"`
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // json|markdown|text
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Verbose       bool   `yaml:"verbose" json:"verbose"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Extract: ExtractConfig{
			OCRTimeout:  60 * time.Second,
			MaxFileSize: 100 * 1024 * 1024,
		},
		Normalize: NormalizeConfig{
			StripTOC:   true,
			RedactPII:  true,
			KeepTables: true,
		},
		Chunking: ChunkingConfig{
			MaxTokens:     600,
			OverlapTokens: 50,
			Workers:       3,
		},
		AI: AIConfig{
			Provider:   "ollama",
			Model:      "llama3.1",
			EmbedModel: "nomic-embed-text",
			Endpoint:   "http://localhost:11434",
			APIKey:     "",
			Timeout:    30 * time.Second,
			MaxRetries: 3,
		},
		Matching: MatchingConfig{
			QuestionsPath: "./examples/questions/due_diligence.json",
			TopK:          5,
			Workers:       4,
		},
		Answers: AnswerConfig{
			Workers:     2,
			Temperature: 0.1,
			MaxTokens:   1024,
		},
		Storage: StorageConfig{
			DataDir:     "./data",
			UploadDir:   "./uploads",
			AnswerDir:   "./generated_answers",
			TempDir:     "./temp",
			HistoryPath: "./data/upload_history.json",
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			Verbose:       false,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateAIConfig(); err != nil {
		return err
	}
	if err := c.validateChunkingConfig(); err != nil {
		return err
	}
	if err := c.validateMatchingConfig(); err != nil {
		return err
	}
	return c.validateOutputConfig()
}

func (c *Config) validateAIConfig() error {
	if c.AI.Provider != "" {
		validProviders := map[string]bool{
			"ollama": true,
			"openai": true,
		}
		if !validProviders[c.AI.Provider] {
			return fmt.Errorf("invalid AI provider: %s (must be one of: ollama, openai)", c.AI.Provider)
		}
	}
	if c.AI.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative")
	}
	if c.AI.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	return nil
}

func (c *Config) validateChunkingConfig() error {
	if c.Chunking.MaxTokens < 1 {
		return fmt.Errorf("chunking max_tokens must be greater than 0")
	}
	if c.Chunking.OverlapTokens < 0 {
		return fmt.Errorf("chunking overlap_tokens must be non-negative")
	}
	if c.Chunking.OverlapTokens >= c.Chunking.MaxTokens {
		return fmt.Errorf("chunking overlap_tokens must be smaller than max_tokens")
	}
	if c.Chunking.Workers < 1 {
		return fmt.Errorf("chunking workers must be greater than 0")
	}
	return nil
}

func (c *Config) validateMatchingConfig() error {
	if c.Matching.TopK < 1 {
		return fmt.Errorf("matching top_k must be greater than 0")
	}
	if c.Matching.Workers < 1 {
		return fmt.Errorf("matching workers must be greater than 0")
	}
	return nil
}

func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"json":     true,
			"text":     true,
			"markdown": true,
			"csv":      true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, markdown, csv)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	return nil
}
