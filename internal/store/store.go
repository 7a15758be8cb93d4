// Package store provides durable whole-document storage for the session
// collections. Each collection is a single JSON file mapping session IDs to
// documents; every save rewrites the full file.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Collection names used by the repositories.
const (
	CollectionChatHistories = "chat_histories"
	CollectionRecipeStates  = "recipe_states"
)

// FileStore persists collections as JSON documents under a data directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir, creating the directory
// if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

// Load reads an entire collection into v. A missing file is not an error:
// v is left untouched (callers pass an initialized empty map).
func (s *FileStore) Load(collection string, v interface{}) error {
	data, err := os.ReadFile(s.path(collection))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read collection %s: %w", collection, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode collection %s: %w", collection, err)
	}
	return nil
}

// Save overwrites an entire collection with v. The document is written to a
// temp file and renamed into place so a single save is all-or-nothing.
func (s *FileStore) Save(collection string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", collection, err)
	}

	tmp, err := os.CreateTemp(s.dir, collection+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", collection, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write collection %s: %w", collection, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file for %s: %w", collection, err)
	}

	if err := os.Rename(tmpName, s.path(collection)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace collection %s: %w", collection, err)
	}
	return nil
}
