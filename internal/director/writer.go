package director

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WriteCueSheet writes a cue sheet to a YAML file, creating the directory if needed
func WriteCueSheet(sheet *CueSheet, path string) error {
	data, err := yaml.Marshal(sheet)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// ReadCueSheet reads and validates a cue sheet from a YAML file
func ReadCueSheet(path string) (*CueSheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sheet CueSheet
	if err := yaml.Unmarshal(data, &sheet); err != nil {
		return nil, fmt.Errorf("parse cue sheet %s: %w", path, err)
	}
	if err := sheet.Validate(); err != nil {
		return nil, fmt.Errorf("cue sheet %s: %w", path, err)
	}

	return &sheet, nil
}
