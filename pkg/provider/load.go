package provider

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Load reads and validates a single provider document from a JSON file.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read provider file: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse provider file %s: %w", filepath.Base(path), err)
	}

	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// LoadAll reads every *.json provider document in a directory into a
// registry. Files that fail to parse or validate are reported together; the
// registry still contains every valid document so callers can keep working.
func LoadAll(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read providers dir: %w", err)
	}

	registry := NewRegistry()
	var problems []string

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		doc, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", entry.Name(), err))
			continue
		}
		registry.Register(doc)
	}

	if len(problems) > 0 {
		return registry, fmt.Errorf("invalid providers: %s", strings.Join(problems, "; "))
	}
	return registry, nil
}
