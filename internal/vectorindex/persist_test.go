package vectorindex

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	ix := New()
	vectors := [][]float32{
		{1.5, -2.25, 0},
		{0.125, 3, -4.5},
	}
	if err := ix.AddBatch(vectors); err != nil {
		t.Fatalf("AddBatch() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "doc.ddvx")
	if err := ix.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.Dimension() != 3 {
		t.Errorf("Dimension() = %d, want 3", loaded.Dimension())
	}
	if loaded.Len() != 2 {
		t.Errorf("Len() = %d, want 2", loaded.Len())
	}

	for i, want := range vectors {
		results, err := loaded.Search(want, 1)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if results[0].Position != i || results[0].Distance != 0 {
			t.Errorf("vector %d not recovered exactly: %+v", i, results[0])
		}
	}
}

func TestSaveLoad_EmptyIndex(t *testing.T) {
	ix := New()

	path := filepath.Join(t.TempDir(), "empty.ddvx")
	if err := ix.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Len() != 0 {
		t.Errorf("Len() = %d, want 0", loaded.Len())
	}
}

func TestSave_CreatesMissingDirectory(t *testing.T) {
	ix := New()
	if err := ix.Add([]float32{1, 2}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	// A fresh data directory does not exist until the first document is
	// processed; Save must create it.
	dir := filepath.Join(t.TempDir(), "data", "indexes")
	indexPath := filepath.Join(dir, "doc.ddvx")
	if err := ix.Save(indexPath); err != nil {
		t.Fatalf("Save() into missing directory error = %v", err)
	}

	loaded, err := Load(indexPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Len() != 1 {
		t.Errorf("Len() = %d, want 1", loaded.Len())
	}

	m := &Manifest{Entries: []ManifestEntry{{ChunkID: 1, Text: "alpha"}}}
	manifestPath := filepath.Join(t.TempDir(), "data", "manifests", "doc.json")
	if err := m.Save(manifestPath); err != nil {
		t.Fatalf("Manifest.Save() into missing directory error = %v", err)
	}
	if _, err := LoadManifest(manifestPath); err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	ix := New()
	if err := ix.Add([]float32{1, 2}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.ddvx")
	if err := ix.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "doc.ddvx" {
		t.Errorf("unexpected directory contents: %v", entries)
	}
}

func TestLoad_BadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.ddvx")
	if err := os.WriteFile(path, []byte("NOPE and then some bytes"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for bad magic")
	}
}

func TestLoad_Truncated(t *testing.T) {
	ix := New()
	if err := ix.AddBatch([][]float32{{1, 2, 3}, {4, 5, 6}}); err != nil {
		t.Fatalf("AddBatch() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "doc.ddvx")
	if err := ix.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if err := os.WriteFile(path, data[:len(data)-5], 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for truncated file")
	}
}

func TestLoad_TrailingData(t *testing.T) {
	ix := New()
	if err := ix.Add([]float32{1, 2}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "doc.ddvx")
	if err := ix.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	if _, err := f.Write([]byte{0xFF}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	_ = f.Close()

	if _, err := Load(path); err == nil {
		t.Error("expected error for trailing data")
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.ddvx")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestManifest_Validate(t *testing.T) {
	ix := New()
	if err := ix.AddBatch([][]float32{{1, 0}, {0, 1}}); err != nil {
		t.Fatalf("AddBatch() error = %v", err)
	}

	tests := []struct {
		name    string
		entries []ManifestEntry
		wantErr bool
	}{
		{
			name:    "valid",
			entries: []ManifestEntry{{ChunkID: 1, Text: "a"}, {ChunkID: 2, Text: "b"}},
			wantErr: false,
		},
		{
			name:    "count mismatch",
			entries: []ManifestEntry{{ChunkID: 1, Text: "a"}},
			wantErr: true,
		},
		{
			name:    "duplicate chunk id",
			entries: []ManifestEntry{{ChunkID: 1, Text: "a"}, {ChunkID: 1, Text: "b"}},
			wantErr: true,
		},
		{
			name:    "non-positive chunk id",
			entries: []ManifestEntry{{ChunkID: 0, Text: "a"}, {ChunkID: 2, Text: "b"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Manifest{Source: "doc.pdf", Entries: tt.entries}
			err := m.Validate(ix)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestManifest_SaveLoad(t *testing.T) {
	m := &Manifest{
		Source: "doc.pdf",
		Model:  "nomic-embed-text",
		Entries: []ManifestEntry{
			{ChunkID: 1, Text: "first chunk"},
			{ChunkID: 2, Text: "second chunk"},
		},
	}

	path := filepath.Join(t.TempDir(), "doc.manifest.json")
	if err := m.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}

	if loaded.Source != "doc.pdf" {
		t.Errorf("Source = %q", loaded.Source)
	}
	if len(loaded.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(loaded.Entries))
	}
	if loaded.Entries[1].ChunkID != 2 || loaded.Entries[1].Text != "second chunk" {
		t.Errorf("entry 1 = %+v", loaded.Entries[1])
	}
}
