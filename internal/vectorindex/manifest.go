package vectorindex

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestEntry maps one index position back to the chunk stored there.
// Entry i describes the vector at position i.
type ManifestEntry struct {
	ChunkID int    `json:"chunk_id"`
	Text    string `json:"text"`
}

// Manifest records the position-to-chunk mapping of an index. It is
// written alongside the index file and validated against it at load
// time; an index without a matching manifest is unusable, since search
// results come back as bare positions.
type Manifest struct {
	Source  string          `json:"source"`
	Model   string          `json:"model,omitempty"`
	Entries []ManifestEntry `json:"entries"`
}

// Validate checks the manifest against an index: entry count must equal
// vector count, and chunk IDs must be positive and unique.
func (m *Manifest) Validate(ix *FlatIndex) error {
	if len(m.Entries) != ix.Len() {
		return fmt.Errorf("manifest has %d entries, index has %d vectors", len(m.Entries), ix.Len())
	}

	seen := make(map[int]struct{}, len(m.Entries))
	for i, entry := range m.Entries {
		if entry.ChunkID <= 0 {
			return fmt.Errorf("entry %d: chunk ID %d is not positive", i, entry.ChunkID)
		}
		if _, ok := seen[entry.ChunkID]; ok {
			return fmt.Errorf("entry %d: duplicate chunk ID %d", i, entry.ChunkID)
		}
		seen[entry.ChunkID] = struct{}{}
	}

	return nil
}

// Save writes the manifest as JSON, atomically.
func (m *Manifest) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return &PersistError{Op: "save", Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return &PersistError{Op: "save", Path: path, Err: err}
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return &PersistError{Op: "save", Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return &PersistError{Op: "save", Path: path, Err: err}
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return &PersistError{Op: "save", Path: path, Err: err}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return &PersistError{Op: "save", Path: path, Err: err}
	}

	return nil
}

// LoadManifest reads a manifest previously written by Save.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &PersistError{Op: "load", Path: path, Err: err}
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &PersistError{Op: "load", Path: path, Err: err}
	}

	return &m, nil
}
