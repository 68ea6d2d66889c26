package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.duedil.yaml",               // Project-specific config (highest priority)
	"~/.config/duedil/config.yaml", // User config
	"/etc/duedil/config.yaml",      // System config (lowest priority)
}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables
// 3. ./.duedil.yaml
// 4. ~/.config/duedil/config.yaml
// 5. /etc/duedil/config.yaml
// 6. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// If custom path is provided, use only that path
	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// Load from standard paths in reverse priority order (lowest to highest)
		paths := make([]string, len(l.configPaths))
		copy(paths, l.configPaths)
		for i := len(paths)/2 - 1; i >= 0; i-- {
			opp := len(paths) - 1 - i
			paths[i], paths[opp] = paths[opp], paths[i]
		}

		for _, path := range paths {
			expandedPath := expandPath(path)
			if fileExists(expandedPath) {
				if err := l.loadFromFile(config, expandedPath); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", expandedPath, err)
				}
			}
		}
	}

	// Apply environment variable overrides
	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	// Validate the final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile loads configuration from a YAML file and merges it with existing config
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() before reaching here
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var fileConfig Config
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	mergeConfigs(config, &fileConfig)

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		// AI Config
		"DUEDIL_AI_PROVIDER":    func(v string) error { config.AI.Provider = v; return nil },
		"DUEDIL_AI_MODEL":       func(v string) error { config.AI.Model = v; return nil },
		"DUEDIL_AI_EMBED_MODEL": func(v string) error { config.AI.EmbedModel = v; return nil },
		"DUEDIL_AI_ENDPOINT":    func(v string) error { config.AI.Endpoint = v; return nil },
		"DUEDIL_AI_API_KEY":     func(v string) error { config.AI.APIKey = v; return nil },
		"DUEDIL_AI_TIMEOUT":     func(v string) error { return parseDuration(v, &config.AI.Timeout) },
		"DUEDIL_AI_MAX_RETRIES": func(v string) error { return parseInt(v, &config.AI.MaxRetries) },

		// Extraction Config
		"DUEDIL_EXTRACT_OCR_ENDPOINT": func(v string) error { config.Extract.OCREndpoint = v; return nil },
		"DUEDIL_EXTRACT_OCR_TIMEOUT":  func(v string) error { return parseDuration(v, &config.Extract.OCRTimeout) },

		// Normalization Config
		"DUEDIL_NORMALIZE_STRIP_TOC":  func(v string) error { return parseBool(v, &config.Normalize.StripTOC) },
		"DUEDIL_NORMALIZE_REDACT_PII": func(v string) error { return parseBool(v, &config.Normalize.RedactPII) },

		// Chunking Config
		"DUEDIL_CHUNKING_MAX_TOKENS":     func(v string) error { return parseInt(v, &config.Chunking.MaxTokens) },
		"DUEDIL_CHUNKING_OVERLAP_TOKENS": func(v string) error { return parseInt(v, &config.Chunking.OverlapTokens) },
		"DUEDIL_CHUNKING_WORKERS":        func(v string) error { return parseInt(v, &config.Chunking.Workers) },

		// Matching Config
		"DUEDIL_MATCHING_QUESTIONS_PATH": func(v string) error { config.Matching.QuestionsPath = v; return nil },
		"DUEDIL_MATCHING_TOP_K":          func(v string) error { return parseInt(v, &config.Matching.TopK) },
		"DUEDIL_MATCHING_WORKERS":        func(v string) error { return parseInt(v, &config.Matching.Workers) },

		// Storage Config
		"DUEDIL_STORAGE_DATA_DIR":     func(v string) error { config.Storage.DataDir = v; return nil },
		"DUEDIL_STORAGE_UPLOAD_DIR":   func(v string) error { config.Storage.UploadDir = v; return nil },
		"DUEDIL_STORAGE_ANSWER_DIR":   func(v string) error { config.Storage.AnswerDir = v; return nil },
		"DUEDIL_STORAGE_TEMP_DIR":     func(v string) error { config.Storage.TempDir = v; return nil },
		"DUEDIL_STORAGE_HISTORY_PATH": func(v string) error { config.Storage.HistoryPath = v; return nil },

		// Output Config
		"DUEDIL_OUTPUT_DEFAULT_FORMAT": func(v string) error { config.Output.DefaultFormat = v; return nil },
		"DUEDIL_OUTPUT_COLOR_MODE":     func(v string) error { config.Output.ColorMode = v; return nil },
		"DUEDIL_OUTPUT_VERBOSE":        func(v string) error { return parseBool(v, &config.Output.Verbose) },
	}

	for envVar, setter := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := expandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// Helper functions

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if strings.HasPrefix(absPath, "/proc/") || strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// mergeConfigs merges source config into destination config.
// Only non-zero values from source overwrite destination.
func mergeConfigs(dst, src *Config) {
	if src.Version != "" {
		dst.Version = src.Version
	}

	mergeExtractConfig(&dst.Extract, &src.Extract)
	mergeNormalizeConfig(&dst.Normalize, &src.Normalize)
	mergeChunkingConfig(&dst.Chunking, &src.Chunking)
	mergeAIConfig(&dst.AI, &src.AI)
	mergeMatchingConfig(&dst.Matching, &src.Matching)
	mergeAnswerConfig(&dst.Answers, &src.Answers)
	mergeStorageConfig(&dst.Storage, &src.Storage)
	mergeOutputConfig(&dst.Output, &src.Output)
}

func mergeExtractConfig(dst, src *ExtractConfig) {
	if src.OCREndpoint != "" {
		dst.OCREndpoint = src.OCREndpoint
	}
	if src.OCRTimeout != 0 {
		dst.OCRTimeout = src.OCRTimeout
	}
	if src.MaxFileSize != 0 {
		dst.MaxFileSize = src.MaxFileSize
	}
}

func mergeNormalizeConfig(dst, src *NormalizeConfig) {
	// Boolean flags default to true; a file can only turn them off by
	// setting them explicitly, which YAML cannot distinguish from the
	// zero value. Overrides for these go through environment variables.
	_ = src
	_ = dst
}

func mergeChunkingConfig(dst, src *ChunkingConfig) {
	if src.MaxTokens != 0 {
		dst.MaxTokens = src.MaxTokens
	}
	if src.OverlapTokens != 0 {
		dst.OverlapTokens = src.OverlapTokens
	}
	if src.Workers != 0 {
		dst.Workers = src.Workers
	}
}

func mergeAIConfig(dst, src *AIConfig) {
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.EmbedModel != "" {
		dst.EmbedModel = src.EmbedModel
	}
	if src.Endpoint != "" {
		dst.Endpoint = src.Endpoint
	}
	if src.APIKey != "" {
		dst.APIKey = src.APIKey
	}
	if src.Timeout != 0 {
		dst.Timeout = src.Timeout
	}
	if src.MaxRetries != 0 {
		dst.MaxRetries = src.MaxRetries
	}
}

func mergeMatchingConfig(dst, src *MatchingConfig) {
	if src.QuestionsPath != "" {
		dst.QuestionsPath = src.QuestionsPath
	}
	if src.TopK != 0 {
		dst.TopK = src.TopK
	}
	if src.Workers != 0 {
		dst.Workers = src.Workers
	}
}

func mergeAnswerConfig(dst, src *AnswerConfig) {
	if src.Workers != 0 {
		dst.Workers = src.Workers
	}
	if src.Temperature != 0 {
		dst.Temperature = src.Temperature
	}
	if src.MaxTokens != 0 {
		dst.MaxTokens = src.MaxTokens
	}
}

func mergeStorageConfig(dst, src *StorageConfig) {
	if src.DataDir != "" {
		dst.DataDir = src.DataDir
	}
	if src.UploadDir != "" {
		dst.UploadDir = src.UploadDir
	}
	if src.AnswerDir != "" {
		dst.AnswerDir = src.AnswerDir
	}
	if src.TempDir != "" {
		dst.TempDir = src.TempDir
	}
	if src.HistoryPath != "" {
		dst.HistoryPath = src.HistoryPath
	}
}

func mergeOutputConfig(dst, src *OutputConfig) {
	if src.DefaultFormat != "" {
		dst.DefaultFormat = src.DefaultFormat
	}
	if src.ColorMode != "" {
		dst.ColorMode = src.ColorMode
	}
	if src.Verbose {
		dst.Verbose = src.Verbose
	}
}

// Parse helpers for environment variable values

func parseDuration(value string, target *time.Duration) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	*target = d
	return nil
}

func parseInt(value string, target *int) error {
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer: %w", err)
	}
	*target = i
	return nil
}

func parseBool(value string, target *bool) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean: %w", err)
	}
	*target = b
	return nil
}
