package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}

	docs := make(map[string]string)
	if err := s.Load("nonexistent", &docs); err != nil {
		t.Fatalf("Load of missing collection should not error: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected empty mapping, got %d entries", len(docs))
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}

	in := map[string][]int{"a": {1, 2, 3}, "b": {4}}
	if err := s.Save("test", in); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	out := make(map[string][]int)
	if err := s.Load("test", &out); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(out) != 2 || len(out["a"]) != 3 || out["b"][0] != 4 {
		t.Errorf("round trip mismatch: %v", out)
	}
}

func TestSave_FullyOverwrites(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}

	if err := s.Save("test", map[string]int{"a": 1, "b": 2}); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := s.Save("test", map[string]int{"c": 3}); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	out := make(map[string]int)
	if err := s.Load("test", &out); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(out) != 1 || out["c"] != 3 {
		t.Errorf("save should replace the whole document, got %v", out)
	}
}

func TestLoad_CorruptFileReturnsError(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := make(map[string]int)
	if err := s.Load("bad", &out); err == nil {
		t.Error("Load of corrupt collection should return an error")
	}
}

func TestSave_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	if err := s.Save("test", map[string]int{"a": 1}); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}
