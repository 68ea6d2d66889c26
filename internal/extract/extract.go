// Package extract turns uploaded documents into raw tagged text. Each
// format gets its own extractor; the service routes by file extension
// and enforces the upload size limit. Extracted text carries section
// tags ([TEXT CONTENT], [TABLES], [TEXT FROM IMAGE]) that normalization
// converts into canonical headers.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ExtractionError reports a failure to get text out of a document.
type ExtractionError struct {
	Path   string
	Format string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s (%s): %v", e.Path, e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Extractor extracts text from a single document format.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Config controls the extraction service.
type Config struct {
	// OCREndpoint is the HTTP OCR service used for images. Empty
	// disables image extraction.
	OCREndpoint string

	// OCRTimeout bounds a single OCR request
	OCRTimeout time.Duration

	// MaxFileSize rejects uploads larger than this many bytes. Zero
	// means no limit.
	MaxFileSize int64
}

// Service routes documents to the extractor for their format.
type Service struct {
	cfg        Config
	extractors map[string]Extractor
}

// NewService creates an extraction service with all built-in extractors
// registered.
func NewService(cfg Config) *Service {
	s := &Service{
		cfg:        cfg,
		extractors: make(map[string]Extractor),
	}

	s.extractors[".pdf"] = &pdfExtractor{}
	s.extractors[".docx"] = &docxExtractor{}
	s.extractors[".xlsx"] = &sheetExtractor{}
	s.extractors[".csv"] = &csvExtractor{}

	if cfg.OCREndpoint != "" {
		ocr := newOCRClient(cfg.OCREndpoint, cfg.OCRTimeout)
		s.extractors[".jpg"] = ocr
		s.extractors[".jpeg"] = ocr
		s.extractors[".png"] = ocr
	}

	return s
}

// SupportedExtensions returns the extensions this service can extract,
// in no particular order.
func (s *Service) SupportedExtensions() []string {
	exts := make([]string, 0, len(s.extractors))
	for ext := range s.extractors {
		exts = append(exts, ext)
	}
	return exts
}

// Supports reports whether path has an extractable extension.
func (s *Service) Supports(path string) bool {
	_, ok := s.extractors[normalizeExt(path)]
	return ok
}

// Extract returns the raw tagged text of the document at path. An empty
// result is not an error; callers decide how to treat empty documents.
func (s *Service) Extract(ctx context.Context, path string) (string, error) {
	ext := normalizeExt(path)

	info, err := os.Stat(path)
	if err != nil {
		return "", &ExtractionError{Path: path, Format: ext, Err: err}
	}

	if s.cfg.MaxFileSize > 0 && info.Size() > s.cfg.MaxFileSize {
		return "", &ExtractionError{
			Path:   path,
			Format: ext,
			Err:    fmt.Errorf("file size %d exceeds limit %d", info.Size(), s.cfg.MaxFileSize),
		}
	}

	extractor, ok := s.extractors[ext]
	if !ok {
		if ext == ".xls" {
			return "", &ExtractionError{
				Path:   path,
				Format: ext,
				Err:    fmt.Errorf("legacy .xls is not supported, convert to .xlsx"),
			}
		}
		return "", &ExtractionError{
			Path:   path,
			Format: ext,
			Err:    fmt.Errorf("unsupported format"),
		}
	}

	text, err := extractor.Extract(ctx, path)
	if err != nil {
		return "", &ExtractionError{Path: path, Format: ext, Err: err}
	}

	return text, nil
}

func normalizeExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
