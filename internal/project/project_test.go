package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	cwd := filepath.Join(string(filepath.Separator), "home", "dev", "code")

	tests := []struct {
		name     string
		arg      string
		path     string
		baseName string
	}{
		{"relative name", "my-app", filepath.Join(cwd, "my-app"), "my-app"},
		{"current directory", ".", cwd, "code"},
		{"nested name", filepath.Join("clients", "shop"), filepath.Join(cwd, "clients", "shop"), "shop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.arg, cwd)
			require.NoError(t, err)
			assert.Equal(t, tt.arg, c.Name)
			assert.Equal(t, tt.path, c.Path)
			assert.Equal(t, tt.baseName, c.BaseName)
		})
	}
}

func TestNew_EmptyName(t *testing.T) {
	_, err := New("", "/tmp")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestExists(t *testing.T) {
	cwd := t.TempDir()
	c, err := New("my-app", cwd)
	require.NoError(t, err)

	assert.False(t, c.Exists())

	require.NoError(t, os.WriteFile(c.Path, []byte("not a dir"), 0o644))
	assert.False(t, c.Exists())

	require.NoError(t, os.Remove(c.Path))
	require.NoError(t, os.Mkdir(c.Path, 0o755))
	assert.True(t, c.Exists())
	assert.Equal(t, filepath.Join(cwd, "my-app", "composer.json"), c.ComposerFile())
}
