package store

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/stroop/internal/model"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FormatForPath picks the format from a file extension, defaulting to JSON.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Export writes profiles in the given format. JSON output matches the
// layout JSONFile stores.
func Export(w io.Writer, profiles model.Profiles, format string) error {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(profiles); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(profiles); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown export format %q (want %s or %s)", format, FormatJSON, FormatYAML)
	}
}

// Import decodes profiles written by Export or by older data files.
func Import(r io.Reader, format string) (model.Profiles, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read import: %w", err)
	}
	switch strings.ToLower(format) {
	case "", FormatJSON:
		profiles, err := decodeJSON(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		return profiles, nil
	case FormatYAML, "yml":
		var profiles model.Profiles
		if err := yaml.Unmarshal(data, &profiles); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if profiles == nil {
			profiles = emptyProfiles()
		}
		return profiles, nil
	default:
		return nil, fmt.Errorf("unknown import format %q (want %s or %s)", format, FormatJSON, FormatYAML)
	}
}

// Merge copies every profile of src into dst, replacing same-named users.
// It returns the names that were replaced.
func Merge(dst, src model.Profiles) []string {
	var replaced []string
	for name, p := range src {
		if _, ok := dst[name]; ok {
			replaced = append(replaced, name)
		}
		dst[name] = p.Clone()
	}
	return replaced
}
