// Package store persists user profiles.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/verte-zerg/stroop/internal/model"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
	BackendMemory = "memory"
)

// ErrCorrupt marks stored data that could not be decoded. Load still
// returns a usable empty mapping alongside it.
var ErrCorrupt = errors.New("profile data is corrupt")

// ProfileStore loads and saves the full user-name to profile mapping.
type ProfileStore interface {
	// Load returns every stored profile. On failure it returns an empty,
	// non-nil mapping together with the error.
	Load(ctx context.Context) (model.Profiles, error)
	// Save replaces the stored mapping with profiles.
	Save(ctx context.Context, profiles model.Profiles) error
	Close() error
}

// Open returns the store for backend at path. An empty backend selects SQLite.
func Open(backend, path string) (ProfileStore, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendSQLite:
		return OpenSQLite(path)
	case BackendJSON:
		return NewJSONFile(path), nil
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q (want %s, %s or %s)", backend, BackendSQLite, BackendJSON, BackendMemory)
	}
}

func emptyProfiles() model.Profiles {
	return model.Profiles{}
}
