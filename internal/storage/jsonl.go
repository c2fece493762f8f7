package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spinode/spinode/internal/catalog"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines.
// Classes with many props produce long lines, so this is generous.
const MaxJSONLLineCapacity = 4 * 1024 * 1024

// readJSONL decodes one T per non-empty line of path. A missing file is empty.
func readJSONL[T any](path, what string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s file: %w", what, err)
	}
	defer f.Close()

	var out []T
	scanner := bufio.NewScanner(f)
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var v T
		if err := json.Unmarshal(line, &v); err != nil {
			return nil, fmt.Errorf("parsing %s line %d: %w", what, lineNum, err)
		}
		out = append(out, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s file: %w", what, err)
	}
	return out, nil
}

// writeJSONL replaces path with one JSON line per item. The file is written
// to a temp file in the same directory and renamed into place.
func writeJSONL[T any](path, what string, items []T) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.jsonl")
	if err != nil {
		return fmt.Errorf("creating %s file: %w", what, err)
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, item := range items {
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("encoding %s %d: %w", what, i, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing %s file: %w", what, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing %s file: %w", what, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s file: %w", what, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing %s file: %w", what, err)
	}
	success = true
	return nil
}

// ReadClasses reads all classes from a JSONL file.
func ReadClasses(path string) ([]catalog.Class, error) {
	return readJSONL[catalog.Class](path, "classes")
}

// WriteClasses writes classes to a JSONL file, replacing its contents.
func WriteClasses(path string, classes []catalog.Class) error {
	return writeJSONL(path, "classes", classes)
}

// MergeClasses overlays incoming classes on the JSONL file at path by name and
// rewrites it. It returns how many classes were added and replaced.
func MergeClasses(path string, incoming []catalog.Class) (added, replaced int, err error) {
	for i := range incoming {
		if err := incoming[i].Validate(); err != nil {
			return 0, 0, err
		}
	}
	existing, err := ReadClasses(path)
	if err != nil {
		return 0, 0, err
	}
	merged, added, replaced := catalog.Merge(existing, incoming)
	if err := WriteClasses(path, merged); err != nil {
		return 0, 0, err
	}
	return added, replaced, nil
}
