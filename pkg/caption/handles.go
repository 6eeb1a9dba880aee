package caption

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Handles maps a venue id to its Instagram handle
type Handles map[string]string

// LoadHandles reads a JSON object of venue id to handle. An empty path
// yields no handles.
func LoadHandles(path string) (Handles, error) {
	if path == "" {
		return Handles{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read venue handles: %w", err)
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse venue handles %s: %w", path, err)
	}

	h := make(Handles, len(raw))
	for id, handle := range raw {
		handle = strings.TrimSpace(handle)
		if handle == "" {
			continue
		}
		if !strings.HasPrefix(handle, "@") {
			handle = "@" + handle
		}
		h[strings.TrimSpace(id)] = handle
	}
	return h, nil
}

// Lookup returns the handle for an exact venue id match
func (h Handles) Lookup(venueID string) string {
	return h[venueID]
}
