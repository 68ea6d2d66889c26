package vectorindex

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

const (
	fileMagic   = "DDVX"
	fileVersion = uint32(1)

	// maxVectorCount bounds a file header before allocation, so a
	// corrupt count cannot ask for gigabytes.
	maxVectorCount = 1 << 24
	maxDimension   = 1 << 16
)

// PersistError wraps failures while saving or loading index files.
type PersistError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// Save writes the index to path atomically: the bytes go to a temp file
// in the same directory which is renamed over the target, so a crash
// never leaves a half-written index behind.
func (ix *FlatIndex) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return &PersistError{Op: "save", Path: path, Err: err}
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return &PersistError{Op: "save", Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	if err := ix.write(tmp); err != nil {
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

// Load reads an index previously written by Save.
func Load(path string) (*FlatIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &PersistError{Op: "load", Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	ix, err := read(bufio.NewReader(f))
	if err != nil {
		return nil, &PersistError{Op: "load", Path: path, Err: err}
	}
	return ix, nil
}

func (ix *FlatIndex) write(f *os.File) error {
	w := bufio.NewWriter(f)

	if _, err := w.WriteString(fileMagic); err != nil {
		return err
	}

	header := []uint32{fileVersion, uint32(ix.dim), uint32(len(ix.vectors))}
	for _, v := range header {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}

	buf := make([]byte, 4)
	for _, vector := range ix.vectors {
		for _, value := range vector {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(value))
			if _, err := w.Write(buf); err != nil {
				return err
			}
		}
	}

	if err := w.Flush(); err != nil {
		return err
	}
	return f.Sync()
}

func read(r *bufio.Reader) (*FlatIndex, error) {
	magic := make([]byte, len(fileMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	if string(magic) != fileMagic {
		return nil, errors.New("not an index file: bad magic")
	}

	var version, dim, count uint32
	for _, dst := range []*uint32{&version, &dim, &count} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return nil, fmt.Errorf("reading header: %w", err)
		}
	}

	if version != fileVersion {
		return nil, fmt.Errorf("unsupported index version %d", version)
	}
	if dim > maxDimension {
		return nil, fmt.Errorf("implausible dimension %d", dim)
	}
	if count > maxVectorCount {
		return nil, fmt.Errorf("implausible vector count %d", count)
	}
	if count > 0 && dim == 0 {
		return nil, errors.New("zero dimension with non-zero count")
	}

	ix := &FlatIndex{dim: int(dim)}
	buf := make([]byte, 4)
	for i := uint32(0); i < count; i++ {
		vector := make([]float32, dim)
		for j := uint32(0); j < dim; j++ {
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, fmt.Errorf("reading vector %d: %w", i, err)
			}
			vector[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf))
		}
		ix.vectors = append(ix.vectors, vector)
	}

	// Anything after the vectors means the count lied.
	if _, err := r.ReadByte(); err == nil {
		return nil, errors.New("trailing data after vectors")
	}

	return ix, nil
}
