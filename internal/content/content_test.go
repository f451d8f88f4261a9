package content_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/raidloot/internal/content"
)

const pointSchema = `{
  "type": "object",
  "required": ["x"],
  "properties": {"x": {"type": "integer", "minimum": 0}}
}`

type point struct {
	X int `json:"x" yaml:"x"`
}

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	return p
}

func TestFiles_FiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "b.yaml", "x: 1")
	write(t, dir, "a.json", `{"x":1}`)
	write(t, dir, "c.yml", "x: 1")
	write(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.yaml"), 0755))

	files, err := content.Files(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "a.json", filepath.Base(files[0]))
	assert.Equal(t, "b.yaml", filepath.Base(files[1]))
	assert.Equal(t, "c.yml", filepath.Base(files[2]))
}

func TestFiles_MissingDir(t *testing.T) {
	_, err := content.Files(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestReadFile_YAML(t *testing.T) {
	p := write(t, t.TempDir(), "p.yaml", "x: 7\n")
	var got point
	require.NoError(t, content.ReadFile(p, nil, &got))
	assert.Equal(t, 7, got.X)
}

func TestReadFile_JSONValidated(t *testing.T) {
	schema := content.MustCompileSchema("point.json", pointSchema)
	dir := t.TempDir()

	var got point
	require.NoError(t, content.ReadFile(write(t, dir, "ok.json", `{"x": 3}`), schema, &got))
	assert.Equal(t, 3, got.X)

	err := content.ReadFile(write(t, dir, "bad.json", `{"x": -1}`), schema, &got)
	assert.ErrorContains(t, err, "schema validation failed")

	err = content.ReadFile(write(t, dir, "missing.json", `{}`), schema, &got)
	assert.Error(t, err)
}

func TestReadFile_MalformedYAML(t *testing.T) {
	p := write(t, t.TempDir(), "bad.yaml", "x: [\n")
	var got point
	assert.Error(t, content.ReadFile(p, nil, &got))
}

func TestMustCompileSchema_PanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { content.MustCompileSchema("bad.json", `{"type": 12}`) })
}
