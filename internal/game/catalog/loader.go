package catalog

import (
	_ "embed"
	"fmt"

	"github.com/cory-johannsen/raidloot/internal/content"
)

//go:embed schema/catalog.schema.json
var catalogSchemaSrc string

var catalogSchema = content.MustCompileSchema("catalog.schema.json", catalogSchemaSrc)

// File is the on-disk layout of one catalog content file.
type File struct {
	Templates []*Template `yaml:"templates" json:"templates"`
	Presets   []*Preset   `yaml:"presets" json:"presets"`
}

// LoadFiles reads all *.yaml, *.yml and *.json files from dir, validates every
// template, and returns the collected templates and presets.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid templates and presets or the first encountered error.
func LoadFiles(dir string) ([]*Template, []*Preset, error) {
	paths, err := content.Files(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("LoadFiles: %w", err)
	}
	var templates []*Template
	var presets []*Preset
	for _, path := range paths {
		var f File
		if err := content.ReadFile(path, catalogSchema, &f); err != nil {
			return nil, nil, fmt.Errorf("LoadFiles: %w", err)
		}
		for _, t := range f.Templates {
			if err := t.Validate(); err != nil {
				return nil, nil, fmt.Errorf("LoadFiles: invalid template in %q: %w", path, err)
			}
		}
		templates = append(templates, f.Templates...)
		presets = append(presets, f.Presets...)
	}
	return templates, presets, nil
}

// LoadDir loads every content file in dir and builds a Catalog from it.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns a built Catalog or a non-nil error.
func LoadDir(dir string) (*Catalog, error) {
	templates, presets, err := LoadFiles(dir)
	if err != nil {
		return nil, err
	}
	return Build(templates, presets)
}
