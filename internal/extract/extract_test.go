package extract

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestService_Supports(t *testing.T) {
	s := NewService(Config{OCREndpoint: "http://localhost:9000/ocr"})

	supported := []string{"report.pdf", "deck.DOCX", "sheet.xlsx", "data.csv", "scan.jpg", "scan.jpeg", "photo.png"}
	for _, name := range supported {
		if !s.Supports(name) {
			t.Errorf("Supports(%q) = false, want true", name)
		}
	}

	unsupported := []string{"notes.txt", "archive.zip", "legacy.xls", "noext"}
	for _, name := range unsupported {
		if s.Supports(name) {
			t.Errorf("Supports(%q) = true, want false", name)
		}
	}
}

func TestService_Supports_NoOCR(t *testing.T) {
	s := NewService(Config{})

	if s.Supports("scan.jpg") {
		t.Error("images must be unsupported without an OCR endpoint")
	}
}

func TestService_Extract_MissingFile(t *testing.T) {
	s := NewService(Config{})

	_, err := s.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}

	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ExtractionError, got %T", err)
	}
}

func TestService_Extract_UnsupportedFormat(t *testing.T) {
	s := NewService(Config{})

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, err := s.Extract(context.Background(), path)
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "unsupported format") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestService_Extract_LegacyXLS(t *testing.T) {
	s := NewService(Config{})

	path := filepath.Join(t.TempDir(), "legacy.xls")
	if err := os.WriteFile(path, []byte("not really a workbook"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, err := s.Extract(context.Background(), path)
	if err == nil {
		t.Fatal("expected error for legacy xls")
	}
	if !strings.Contains(err.Error(), "convert to .xlsx") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestService_Extract_SizeLimit(t *testing.T) {
	s := NewService(Config{MaxFileSize: 10})

	path := filepath.Join(t.TempDir(), "big.csv")
	if err := os.WriteFile(path, []byte("a,b,c\n1,2,3\n4,5,6\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, err := s.Extract(context.Background(), path)
	if err == nil {
		t.Fatal("expected error for oversized file")
	}
	if !strings.Contains(err.Error(), "exceeds limit") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestService_Extract_CSV(t *testing.T) {
	s := NewService(Config{})

	path := filepath.Join(t.TempDir(), "fees.csv")
	content := "item,amount\nmanagement fee,2%\n,\ncarry,20%\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	text, err := s.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if !strings.HasPrefix(text, "[TABLES]\n") {
		t.Errorf("missing tables tag: %q", text)
	}
	if !strings.Contains(text, "management fee | 2%") {
		t.Errorf("missing row: %q", text)
	}
	if strings.Contains(text, "\n | \n") {
		t.Errorf("empty row not skipped: %q", text)
	}
}

func TestService_Extract_DOCX(t *testing.T) {
	s := NewService(Config{})

	path := filepath.Join(t.TempDir(), "memo.docx")
	writeDocx(t, path, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second</w:t></w:r><w:r><w:t xml:space="preserve"> half.</w:t></w:r></w:p>
  </w:body>
</w:document>`)

	text, err := s.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if !strings.HasPrefix(text, "[TEXT CONTENT]\n") {
		t.Errorf("missing text tag: %q", text)
	}
	if !strings.Contains(text, "First paragraph.\n") {
		t.Errorf("missing first paragraph: %q", text)
	}
	if !strings.Contains(text, "Second half.") {
		t.Errorf("runs not joined: %q", text)
	}
}

func TestService_Extract_DOCX_MissingDocumentPart(t *testing.T) {
	s := NewService(Config{})

	path := filepath.Join(t.TempDir(), "broken.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/other.xml")
	if err != nil {
		t.Fatalf("zip Create() error = %v", err)
	}
	_, _ = w.Write([]byte("<x/>"))
	_ = zw.Close()
	_ = f.Close()

	_, err = s.Extract(context.Background(), path)
	if err == nil {
		t.Fatal("expected error for docx without document part")
	}
}

func TestService_Extract_Image(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("expected multipart upload: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("expected file field: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "Total fees: 2 percent"})
	}))
	defer server.Close()

	s := NewService(Config{OCREndpoint: server.URL})

	path := filepath.Join(t.TempDir(), "scan.png")
	if err := os.WriteFile(path, []byte("fake image bytes"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	text, err := s.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if !strings.HasPrefix(text, "[TEXT FROM IMAGE]\n") {
		t.Errorf("missing image tag: %q", text)
	}
	if !strings.Contains(text, "Total fees: 2 percent") {
		t.Errorf("missing OCR text: %q", text)
	}
}

func TestService_Extract_Image_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	s := NewService(Config{OCREndpoint: server.URL})

	path := filepath.Join(t.TempDir(), "scan.png")
	if err := os.WriteFile(path, []byte("fake image bytes"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, err := s.Extract(context.Background(), path)
	if err == nil {
		t.Fatal("expected error for failing OCR service")
	}
}

func TestFlattenDocumentXML_Breaks(t *testing.T) {
	doc := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body><w:p><w:r><w:t>before</w:t></w:r><w:r><w:br/></w:r><w:r><w:t>after</w:t></w:r></w:p></w:body>
</w:document>`

	text, err := flattenDocumentXML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("flattenDocumentXML() error = %v", err)
	}
	if !strings.Contains(text, "before\nafter") {
		t.Errorf("line break not preserved: %q", text)
	}
}

func writeDocx(t *testing.T, path, documentXML string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("zip Create() error = %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip Close() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}
