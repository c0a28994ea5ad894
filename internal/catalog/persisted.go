package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// LoadPersisted reads the catalog file the scanner persisted on a prior
// run. The file is a plain JSON array of entry records; gamedex never
// writes it. A missing file is not an error, it just means a cold start
// with an empty catalog.
func LoadPersisted(path string) ([]Entry, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read persisted catalog: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse persisted catalog: %w", err)
	}
	return entries, nil
}
