package config

// SampleConfig returns a fully documented sample configuration file.
func SampleConfig() string {
	return `# DueDil configuration file
# Place at ./.duedil.yaml, ~/.config/duedil/config.yaml, or /etc/duedil/config.yaml.
# Environment variables with the DUEDIL_ prefix override file settings.

version: "1.0"

# Document text extraction
extract:
  # External OCR service for scanned images (jpg/png). Leave empty to
  # disable image ingestion.
  ocr_endpoint: ""
  ocr_timeout: 60s
  max_file_size: 104857600  # 100 MB

# Text normalization
normalize:
  strip_toc: true    # strip leading table-of-contents regions
  redact_pii: true   # replace emails, URLs, phone numbers with placeholders
  keep_tables: true  # keep extracted table sections in the text

# Chunking of normalized text
chunking:
  max_tokens: 600
  overlap_tokens: 50
  workers: 3

# Embedding and completion provider
ai:
  provider: "ollama"              # ollama or openai
  model: "llama3.1"               # completion model
  embed_model: "nomic-embed-text" # embedding model
  endpoint: "http://localhost:11434"
  api_key: ""                     # required for openai
  timeout: 30s
  max_retries: 3

# Question-to-chunk matching
matching:
  questions_path: "./examples/questions/due_diligence.json"
  top_k: 5
  workers: 4

# Answer synthesis
answers:
  workers: 2
  temperature: 0.1
  max_tokens: 1024

# On-disk artifact locations
storage:
  data_dir: "./data"
  upload_dir: "./uploads"
  answer_dir: "./generated_answers"
  temp_dir: "./temp"
  history_path: "./data/upload_history.json"

# Output formatting
output:
  default_format: "text"  # text, json, markdown, csv
  color_mode: "auto"      # auto, always, never
  verbose: false
`
}

// MinimalSampleConfig returns a compact sample with only the settings
// most installations change.
func MinimalSampleConfig() string {
	return `# DueDil configuration (minimal)
version: "1.0"

ai:
  provider: "ollama"
  model: "llama3.1"
  embed_model: "nomic-embed-text"
  endpoint: "http://localhost:11434"

matching:
  questions_path: "./examples/questions/due_diligence.json"
  top_k: 5

storage:
  upload_dir: "./uploads"
  answer_dir: "./generated_answers"
`
}
