package location

import (
	_ "embed"
	"fmt"

	"github.com/cory-johannsen/raidloot/internal/content"
)

//go:embed schema/location.schema.json
var locationSchemaSrc string

var locationSchema = content.MustCompileSchema("location.schema.json", locationSchemaSrc)

// LoadFile reads one location file. JSON files are schema-validated first.
//
// Precondition: path is a readable YAML or JSON file.
// Postcondition: returns validated Data or a non-nil error.
func LoadFile(path string) (*Data, error) {
	var d Data
	if err := content.ReadFile(path, locationSchema, &d); err != nil {
		return nil, fmt.Errorf("LoadFile: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("LoadFile: %q: %w", path, err)
	}
	return &d, nil
}

// LoadDir reads every location file in dir, keyed by location id.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all locations or the first encountered error.
func LoadDir(dir string) (map[string]*Data, error) {
	paths, err := content.Files(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadDir: %w", err)
	}
	out := make(map[string]*Data, len(paths))
	for _, path := range paths {
		d, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		if _, dup := out[d.ID]; dup {
			return nil, fmt.Errorf("LoadDir: location %q defined more than once", d.ID)
		}
		out[d.ID] = d
	}
	return out, nil
}
