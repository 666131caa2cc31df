package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/verte-zerg/stroop/internal/model"
)

// JSONFile stores the whole mapping as one indented JSON document, the
// stroop_user_data.json layout.
type JSONFile struct {
	path string
	mu   sync.Mutex
}

// NewJSONFile returns a store backed by path. The file is created on the
// first Save.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Path returns the backing file.
func (j *JSONFile) Path() string { return j.path }

// Load implements ProfileStore. A missing or empty file is an empty mapping.
func (j *JSONFile) Load(context.Context) (model.Profiles, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	data, err := os.ReadFile(j.path)
	if errors.Is(err, fs.ErrNotExist) {
		return emptyProfiles(), nil
	}
	if err != nil {
		return emptyProfiles(), fmt.Errorf("failed to read %s: %w", j.path, err)
	}
	profiles, err := decodeJSON(data)
	if err != nil {
		return emptyProfiles(), fmt.Errorf("%w: %s: %v", ErrCorrupt, j.path, err)
	}
	return profiles, nil
}

// Save implements ProfileStore. The document is written to a temporary file
// and renamed over the old one.
func (j *JSONFile) Save(_ context.Context, profiles model.Profiles) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profiles: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(j.path), ".stroop-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, j.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", j.path, err)
	}
	return nil
}

// Close implements ProfileStore.
func (j *JSONFile) Close() error { return nil }

func decodeJSON(data []byte) (model.Profiles, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return emptyProfiles(), nil
	}
	var profiles model.Profiles
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = emptyProfiles()
	}
	return profiles, nil
}
