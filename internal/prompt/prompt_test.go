package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	template := "Analyze {coin_name} at ${current_price}. Decide for {coin_name}."
	got := Render(template, "Bitcoin", 50123.45)
	assert.Equal(t, "Analyze Bitcoin at $50123.45. Decide for Bitcoin.", got)
}

func TestRenderWithoutPlaceholders(t *testing.T) {
	assert.Equal(t, "fixed text", Render("fixed text", "Bitcoin", 1))
}

func TestManagerLoadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.txt")
	require.NoError(t, os.WriteFile(path, []byte("prompt for {coin_name}\n"), 0o644))

	m := NewManager(path)
	assert.Equal(t, "prompt for {coin_name}", m.Template())
}

func TestManagerMissingFile(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Empty(t, m.Template())
}

func TestManagerReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	m := NewManager(path)
	require.Equal(t, "v1", m.Template())

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	m.reload()
	assert.Equal(t, "v2", m.Template())
}
