package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// SchemaVersion is written to every registry file.
const SchemaVersion = 1

// fileV1 is the on-disk layout. Files written before versioning are either
// a bare array of records or an object holding only "repositories"; both
// decode into this shape with Version 0.
type fileV1 struct {
	Version      int          `json:"version"`
	Repositories []Repository `json:"repositories"`
}

// decodeFile accepts the versioned object and both legacy layouts.
func decodeFile(data []byte) (fileV1, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fileV1{}, nil
	}
	var out fileV1
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &out.Repositories); err != nil {
			return fileV1{}, fmt.Errorf("decode legacy array: %w", err)
		}
	case '{':
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return fileV1{}, fmt.Errorf("decode registry object: %w", err)
		}
		if out.Version > SchemaVersion {
			return fileV1{}, fmt.Errorf("unsupported registry version %d", out.Version)
		}
	default:
		return fileV1{}, errors.New("registry file is neither an object nor an array")
	}
	return out, nil
}

// readFile returns the records stored at path. A missing file yields no
// records and no error.
func readFile(path string) ([]Repository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	f, err := decodeFile(data)
	if err != nil {
		return nil, err
	}
	return f.Repositories, nil
}

// writeFile replaces path with the given records. Data goes to a temp file
// in the same directory first and is renamed over the target.
func writeFile(path string, records []Repository) error {
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	data, err := json.MarshalIndent(fileV1{Version: SchemaVersion, Repositories: records}, "", "  ")
	if err != nil {
		return &IOError{Op: "encode", Path: path, Err: err}
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	tmp, err := os.CreateTemp(dir, ".repositories-*.tmp")
	if err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &IOError{Op: "sync", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
