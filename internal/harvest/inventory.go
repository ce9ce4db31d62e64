package harvest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SaveInventory persists a SiteInventory as the canonical interchange JSON.
func SaveInventory(path string, inv SiteInventory) error {
	data, err := json.MarshalIndent(inv, "", "  ")
	if err != nil {
		return &IOError{Op: "encoding inventory", Path: path, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &IOError{Op: "creating inventory dir", Path: filepath.Dir(path), Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &IOError{Op: "writing inventory", Path: path, Err: err}
	}
	return nil
}

// LoadInventory reads an interchange JSON document back into a SiteInventory.
func LoadInventory(path string) (SiteInventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory %s: %w", path, err)
	}
	return ParseInventory(data)
}

// ParseInventory decodes interchange JSON bytes.
func ParseInventory(data []byte) (SiteInventory, error) {
	var inv SiteInventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("parsing inventory: %w", err)
	}
	return inv, nil
}
