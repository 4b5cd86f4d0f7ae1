// Package composer loads, edits, and writes back a project's composer.json.
//
// The document is kept as raw bytes so every section this package does not
// manage (require, autoload, config, ...) is written back byte-for-byte in its
// original position; only "scripts" is parsed into an ordered model and
// spliced back on Write.
package composer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"laravel-assembler/internal/logger"
)

var (
	// ErrManifestNotFound is returned when composer.json does not exist.
	ErrManifestNotFound = errors.New("composer.json not found")
	// ErrInvalidJSON is returned when composer.json cannot be parsed.
	ErrInvalidJSON = errors.New("composer.json is not valid JSON")
)

// indentation matches what composer itself writes.
var prettyOptions = &pretty.Options{Indent: "    ", SortKeys: false}

// Manifest is a loaded composer.json.
type Manifest struct {
	path string
	raw  []byte

	// Scripts is the editable scripts section.
	Scripts *Scripts
	loaded  *Scripts
}

// Load reads and validates the composer.json at path.
func Load(path string) (*Manifest, error) {
	raw, err := read(path)
	if err != nil {
		return nil, err
	}

	scripts := parseScripts(gjson.GetBytes(raw, "scripts"))
	logger.Debug("[DEBUG] Loaded %s with %d scripts\n", path, scripts.Len())

	return &Manifest{
		path:    path,
		raw:     raw,
		Scripts: scripts,
		loaded:  scripts.Clone(),
	}, nil
}

func read(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidJSON, path)
	}
	if err := validate(raw); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return raw, nil
}

// Path returns the file the manifest was loaded from.
func (m *Manifest) Path() string {
	return m.path
}

// Reload re-reads the document from disk to pick up edits made by other tools
// (composer require rewrites require-dev). The in-memory scripts are kept.
func (m *Manifest) Reload() error {
	raw, err := read(m.path)
	if err != nil {
		return err
	}
	m.raw = raw
	return nil
}

// RequireDev returns the package names listed under require-dev, in order.
func (m *Manifest) RequireDev() []string {
	var names []string
	gjson.GetBytes(m.raw, "require-dev").ForEach(func(key, _ gjson.Result) bool {
		names = append(names, key.String())
		return true
	})
	return names
}

// Dirty reports whether the scripts changed since the manifest was loaded.
func (m *Manifest) Dirty() bool {
	return !m.Scripts.Equal(m.loaded)
}

// Reorder rewrites the scripts section in order and returns the names of
// entries that were not listed. Those are dropped unless keepUnknown is set.
func (m *Manifest) Reorder(order []string, keepUnknown bool) []string {
	unlisted := m.Scripts.Unlisted(order)
	m.Scripts = m.Scripts.Reorder(order, keepUnknown)
	return unlisted
}

// Bytes renders the whole document with the current scripts section.
func (m *Manifest) Bytes() ([]byte, error) {
	scripts, err := m.Scripts.MarshalJSON()
	if err != nil {
		return nil, err
	}
	doc, err := sjson.SetRawBytes(m.raw, "scripts", scripts)
	if err != nil {
		return nil, fmt.Errorf("updating scripts: %w", err)
	}
	return pretty.PrettyOptions(doc, prettyOptions), nil
}

// Write replaces the file on disk with the rendered document. On failure the
// previous file is left as it was.
func (m *Manifest) Write() error {
	out, err := m.Bytes()
	if err != nil {
		return err
	}

	info, err := os.Stat(m.path)
	mode := fs.FileMode(0o644)
	if err == nil {
		mode = info.Mode().Perm()
	}

	// Write next to the target and rename so a failure never truncates composer.json.
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, out, mode); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", m.path, err)
	}

	m.raw = out
	m.loaded = m.Scripts.Clone()
	logger.Debug("[DEBUG] Wrote %s\n", m.path)
	return nil
}
