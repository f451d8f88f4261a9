// Package content reads engine content files. YAML files are decoded
// directly; JSON files (typically dumps of upstream data) are validated
// against a JSON schema before decoding.
package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// MustCompileSchema compiles an in-memory JSON schema and panics on error.
// Useful for package-level schema variables built from embedded files.
//
// Precondition: src must be a valid JSON schema document.
func MustCompileSchema(name, src string) *jsonschema.Schema {
	s, err := jsonschema.CompileString(name, src)
	if err != nil {
		panic("content: MustCompileSchema failed for " + name + ": " + err.Error())
	}
	return s
}

// Files returns every *.yaml, *.yml and *.json file directly inside dir,
// sorted by name so loading order is deterministic.
//
// Precondition: dir is a readable directory path.
func Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("content: cannot read directory %q: %w", dir, err)
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml", ".json":
			out = append(out, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// ReadFile decodes the file at path into v. JSON files are first validated
// against schema when schema is non-nil.
//
// Postcondition: returns nil iff the file was read, validated and decoded.
func ReadFile(path string, schema *jsonschema.Schema, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("content: cannot read file %q: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return DecodeJSON(data, schema, v)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("content: cannot parse file %q: %w", path, err)
	}
	return nil
}

// DecodeJSON validates data against schema (when non-nil) and decodes it into v.
func DecodeJSON(data []byte, schema *jsonschema.Schema, v any) error {
	if schema != nil {
		var doc any
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return fmt.Errorf("content: invalid json: %w", err)
		}
		if err := schema.Validate(doc); err != nil {
			return fmt.Errorf("content: schema validation failed: %w", err)
		}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("content: cannot decode json: %w", err)
	}
	return nil
}
