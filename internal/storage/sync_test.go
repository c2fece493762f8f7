package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spinode/spinode/internal/catalog"
)

func TestComputeJSONLHash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "classes.jsonl")

	empty, err := ComputeJSONLHash(path)
	if err != nil {
		t.Fatalf("ComputeJSONLHash (missing): %v", err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if h, _ := ComputeJSONLHash(path); h != empty {
		t.Errorf("empty file hash %s != missing file hash %s", h, empty)
	}

	if err := os.WriteFile(path, []byte(`{"name":"fvBD"}`+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	h1, _ := ComputeJSONLHash(path)
	h2, _ := ComputeJSONLHash(path)
	if h1 == empty || h1 != h2 {
		t.Errorf("hash not stable or not content-based: %s %s", h1, h2)
	}
}

func TestSyncIfStale(t *testing.T) {
	dir := t.TempDir()
	jsonlPath := filepath.Join(dir, "classes.jsonl")
	if err := WriteClasses(jsonlPath, catalog.Demo()[:1]); err != nil {
		t.Fatal(err)
	}

	db, err := OpenDB(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if last, err := db.LastSync(); err != nil || !last.IsZero() {
		t.Errorf("LastSync() on fresh db = %v, %v", last, err)
	}

	rebuilt, err := db.SyncIfStale(jsonlPath)
	if err != nil || !rebuilt {
		t.Fatalf("first SyncIfStale() = %v, %v; want rebuild", rebuilt, err)
	}
	if last, err := db.LastSync(); err != nil || last.IsZero() {
		t.Errorf("LastSync() after rebuild = %v, %v", last, err)
	}

	rebuilt, err = db.SyncIfStale(jsonlPath)
	if err != nil || rebuilt {
		t.Errorf("second SyncIfStale() = %v, %v; want no rebuild", rebuilt, err)
	}

	if err := WriteClasses(jsonlPath, catalog.Demo()); err != nil {
		t.Fatal(err)
	}
	if stale, _ := db.NeedsSync(jsonlPath); !stale {
		t.Error("NeedsSync() = false after the file changed")
	}
	if _, err := db.SyncIfStale(jsonlPath); err != nil {
		t.Fatal(err)
	}
	if n, _ := db.CountClasses(); n != 3 {
		t.Errorf("CountClasses() = %d, want 3", n)
	}
}

func TestWriteClasses_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "classes.jsonl")
	if err := WriteClasses(path, catalog.Demo()); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "classes.jsonl" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contents = %v", names)
	}
}
