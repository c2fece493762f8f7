package storage

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const (
	metaKeyJSONLHash = "jsonl_hash"
	metaKeyLastSync  = "last_sync"
)

// ComputeJSONLHash returns the SHA-256 of a file's contents. A missing file
// hashes as empty.
func ComputeJSONLHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			h := sha256.Sum256(nil)
			return hex.EncodeToString(h[:]), nil
		}
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (d *DB) metaValue(key string) (string, error) {
	var v sql.NullString
	err := d.db.QueryRow(`SELECT value FROM _meta WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v.String, nil
}

func (d *DB) setMetaValue(key, value string) error {
	_, err := d.db.Exec(`INSERT OR REPLACE INTO _meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

// NeedsSync reports whether the catalog tables were built from a different
// version of jsonlPath than the one on disk.
func (d *DB) NeedsSync(jsonlPath string) (bool, error) {
	current, err := ComputeJSONLHash(jsonlPath)
	if err != nil {
		return true, err
	}
	stored, err := d.metaValue(metaKeyJSONLHash)
	if err != nil {
		return true, err
	}
	return current != stored, nil
}

// LastSync returns when the catalog was last rebuilt, or the zero time.
func (d *DB) LastSync() (time.Time, error) {
	s, err := d.metaValue(metaKeyLastSync)
	if err != nil || s == "" {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, s)
}

// recordSync stamps the hash of jsonlPath and the current time.
func (d *DB) recordSync(jsonlPath string) error {
	hash, err := ComputeJSONLHash(jsonlPath)
	if err != nil {
		return fmt.Errorf("computing hash: %w", err)
	}
	if err := d.setMetaValue(metaKeyJSONLHash, hash); err != nil {
		return fmt.Errorf("updating hash: %w", err)
	}
	if err := d.setMetaValue(metaKeyLastSync, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("updating sync time: %w", err)
	}
	return nil
}

// SyncIfStale rebuilds the catalog when jsonlPath changed since the last
// rebuild. It reports whether a rebuild happened.
func (d *DB) SyncIfStale(jsonlPath string) (bool, error) {
	stale, err := d.NeedsSync(jsonlPath)
	if err != nil {
		return false, err
	}
	if !stale {
		return false, nil
	}
	if _, err := d.RebuildFromJSONL(jsonlPath); err != nil {
		return false, err
	}
	return true, nil
}
