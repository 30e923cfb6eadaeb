package persona

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SaveProfiles writes the character → profile mapping as indented UTF-8 JSON.
// Non-ASCII text is written verbatim so the files stay human-diffable.
func SaveProfiles(profiles map[string]Profile, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(profiles); err != nil {
		return fmt.Errorf("failed to encode personas: %w", err)
	}
	return nil
}

// LoadProfiles reads a character → profile mapping written by SaveProfiles.
func LoadProfiles(path string) (map[string]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var profiles map[string]Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse personas %s: %w", path, err)
	}
	return profiles, nil
}

// Merge combines two mappings: entries in update replace same-key entries in
// existing, every other existing entry survives. Neither input is mutated.
func Merge(existing, update map[string]Profile) map[string]Profile {
	merged := make(map[string]Profile, len(existing)+len(update))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range update {
		merged[k] = v
	}
	return merged
}
