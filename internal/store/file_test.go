package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DITF16/stockgame/internal/store"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestFileStore_RoundTrip(t *testing.T) {
	fs, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	in := doc{Name: "alpha", Count: 3}
	if err := fs.Save(context.Background(), "test_doc", in); err != nil {
		t.Fatalf("save: %v", err)
	}

	var out doc
	found, err := fs.Load(context.Background(), "test_doc", &out)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !found {
		t.Fatal("document should be found after save")
	}
	if out != in {
		t.Errorf("round trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestFileStore_MissingDocument(t *testing.T) {
	fs, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	var out doc
	found, err := fs.Load(context.Background(), "nope", &out)
	if err != nil {
		t.Fatalf("missing document must not be an error, got %v", err)
	}
	if found {
		t.Error("missing document reported as found")
	}
}

func TestFileStore_Overwrite(t *testing.T) {
	fs, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := fs.Save(context.Background(), "d", doc{Count: 1}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := fs.Save(context.Background(), "d", doc{Count: 2}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	var out doc
	if _, err := fs.Load(context.Background(), "d", &out); err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.Count != 2 {
		t.Errorf("expected latest write to win, got %d", out.Count)
	}
}

func TestFileStore_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fs, err := store.NewFileStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := fs.Save(context.Background(), "d", doc{Count: 1}); err != nil {
		t.Fatalf("save: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
	if _, err := os.Stat(filepath.Join(dir, "d.json")); err != nil {
		t.Errorf("document file missing: %v", err)
	}
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	ms := store.NewMemoryStore()

	if err := ms.Save(context.Background(), "d", doc{Name: "x", Count: 1}); err != nil {
		t.Fatalf("save: %v", err)
	}

	var out doc
	found, err := ms.Load(context.Background(), "d", &out)
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if out.Name != "x" {
		t.Errorf("round trip mismatch: %+v", out)
	}

	found, err = ms.Load(context.Background(), "missing", &out)
	if err != nil || found {
		t.Errorf("missing document: found=%v err=%v", found, err)
	}
}
