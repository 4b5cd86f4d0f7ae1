// Package project derives the working paths of a run from the name argument.
package project

import (
	"errors"
	"os"
	"path/filepath"
)

// Context identifies the project being scaffolded. It is created once from the
// CLI argument and never changes afterwards.
type Context struct {
	// Name is the raw argument, forwarded as-is to the installer.
	Name string
	// Path is the absolute project directory.
	Path string
	// BaseName is the last element of Path, used in messages and as repository name.
	BaseName string
}

// ErrEmptyName is returned when no project name was given.
var ErrEmptyName = errors.New("project name is required")

// New resolves name against cwd. The name "." means cwd itself.
func New(name, cwd string) (Context, error) {
	if name == "" {
		return Context{}, ErrEmptyName
	}

	path := cwd
	if name != "." {
		path = filepath.Join(cwd, name)
		if filepath.IsAbs(name) {
			path = filepath.Clean(name)
		}
	}

	return Context{
		Name:     name,
		Path:     path,
		BaseName: filepath.Base(path),
	}, nil
}

// Exists reports whether the project directory is present.
func (c Context) Exists() bool {
	info, err := os.Stat(c.Path)
	return err == nil && info.IsDir()
}

// File returns the path of rel inside the project.
func (c Context) File(rel ...string) string {
	return filepath.Join(append([]string{c.Path}, rel...)...)
}

// ComposerFile returns the path of the project's composer.json.
func (c Context) ComposerFile() string {
	return c.File("composer.json")
}
