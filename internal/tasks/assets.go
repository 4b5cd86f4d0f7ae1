package tasks

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Files copied into the generated project.
//
//go:embed all:assets
var assets embed.FS

// Asset returns the bundled file name.
func Asset(name string) ([]byte, error) {
	data, err := assets.ReadFile("assets/" + name)
	if err != nil {
		return nil, fmt.Errorf("bundled file %s: %w", name, err)
	}
	return data, nil
}

// placement decides how an asset lands in its target file.
type placement int

const (
	// replace writes the target, overwriting it.
	replace placement = iota
	// appendOnce adds the asset at the end unless the target already contains it.
	appendOnce
	// prependOnce adds the asset at the top unless the target already contains it.
	prependOnce
)

// file maps a bundled asset to a project file.
type file struct {
	Asset  string
	Target string
	How    placement
	Mode   fs.FileMode
}

// place writes f into the project at root.
func place(root string, f file) error {
	data, err := Asset(f.Asset)
	if err != nil {
		return err
	}

	target := filepath.Join(root, filepath.FromSlash(f.Target)) // Targets are written with forward slashes
	mode := f.Mode
	if mode == 0 {
		mode = 0o644
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", f.Target, err)
	}

	if f.How == replace {
		if err := os.WriteFile(target, data, mode); err != nil {
			return fmt.Errorf("writing %s: %w", f.Target, err)
		}
		return nil
	}

	current, err := os.ReadFile(target)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading %s: %w", f.Target, err)
	}
	if strings.Contains(string(current), strings.TrimSpace(string(data))) {
		return nil // Already placed by an earlier run
	}

	var out string
	switch {
	case len(current) == 0:
		out = string(data)
	case f.How == prependOnce:
		out = string(data) + "\n" + string(current)
	default:
		sep := "\n"
		if !strings.HasSuffix(string(current), "\n") {
			sep = "\n\n"
		}
		out = string(current) + sep + string(data)
	}
	if err := os.WriteFile(target, []byte(out), mode); err != nil {
		return fmt.Errorf("writing %s: %w", f.Target, err)
	}
	return nil
}
