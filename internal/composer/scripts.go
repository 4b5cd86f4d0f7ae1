package composer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/tidwall/gjson"
)

// CanonicalOrder is the order scripts are written back in.
var CanonicalOrder = []string{
	"post-autoload-dump",
	"post-root-package-install",
	"post-create-project-cmd",
	"post-update-cmd",
	"install-hooks",
	"pre-install-cmd",
	"post-install-cmd",
	"phpcs",
	"phpcbf",
	"pint",
	"optimize",
}

// Script is the value of one scripts entry. Composer accepts a single command
// string or a list of commands; List remembers which form to write back.
type Script struct {
	Commands []string
	List     bool
}

// Equal reports whether both scripts hold the same commands in the same form.
func (s Script) Equal(o Script) bool {
	return s.List == o.List && slices.Equal(s.Commands, o.Commands)
}

// Scripts is the ordered "scripts" section of a composer.json.
type Scripts struct {
	keys   []string
	values map[string]Script
}

// NewScripts returns an empty section.
func NewScripts() *Scripts {
	return &Scripts{values: make(map[string]Script)}
}

func (s *Scripts) put(name string, v Script) {
	if _, ok := s.values[name]; !ok {
		s.keys = append(s.keys, name)
	}
	s.values[name] = v
}

// Set stores a single-command script. An existing entry keeps its position.
func (s *Scripts) Set(name, command string) {
	s.put(name, Script{Commands: []string{command}})
}

// SetList stores a list script, replacing any previous value.
func (s *Scripts) SetList(name string, commands ...string) {
	s.put(name, Script{Commands: slices.Clone(commands), List: true})
}

// Append adds commands to the end of name, turning a single-command entry into
// a list and creating the entry when it is missing.
func (s *Scripts) Append(name string, commands ...string) {
	cur := s.values[name]
	s.put(name, Script{Commands: append(slices.Clone(cur.Commands), commands...), List: true})
}

// Get returns the entry stored under name.
func (s *Scripts) Get(name string) (Script, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Has reports whether name is present.
func (s *Scripts) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Keys returns the script names in order.
func (s *Scripts) Keys() []string {
	return slices.Clone(s.keys)
}

// Len returns the number of entries.
func (s *Scripts) Len() int {
	return len(s.keys)
}

// Clone returns a deep copy.
func (s *Scripts) Clone() *Scripts {
	c := NewScripts()
	for _, k := range s.keys {
		v := s.values[k]
		c.put(k, Script{Commands: slices.Clone(v.Commands), List: v.List})
	}
	return c
}

// Equal reports whether both sections hold the same entries in the same order.
func (s *Scripts) Equal(o *Scripts) bool {
	if !slices.Equal(s.keys, o.keys) {
		return false
	}
	for _, k := range s.keys {
		if !s.values[k].Equal(o.values[k]) {
			return false
		}
	}
	return true
}

// Reorder returns a copy with the entries listed in order first, in that order.
// Entries not listed are appended in their current order when keepUnknown is
// set and left out otherwise. Reordering an already reordered section is a no-op.
func (s *Scripts) Reorder(order []string, keepUnknown bool) *Scripts {
	out := NewScripts()
	for _, name := range order {
		if v, ok := s.values[name]; ok {
			out.put(name, v)
		}
	}
	if keepUnknown {
		for _, name := range s.keys {
			if !out.Has(name) {
				out.put(name, s.values[name])
			}
		}
	}
	return out
}

// Unlisted returns the entries a Reorder with order would drop.
func (s *Scripts) Unlisted(order []string) []string {
	var names []string
	for _, name := range s.keys {
		if !slices.Contains(order, name) {
			names = append(names, name)
		}
	}
	return names
}

// MarshalJSON renders the section keeping its order, without HTML escaping.
func (s *Scripts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encode(&buf, name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')

		v := s.values[name]
		var value any = v.Commands
		if !v.List && len(v.Commands) == 1 {
			value = v.Commands[0]
		} else if v.Commands == nil {
			value = []string{}
		}
		if err := encode(&buf, value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encode(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding script %v: %w", v, err)
	}
	// Encode always terminates with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// parseScripts reads a gjson "scripts" value. The document has already been
// validated, so every value is a string or an array of strings.
func parseScripts(r gjson.Result) *Scripts {
	s := NewScripts()
	if !r.IsObject() {
		return s
	}
	r.ForEach(func(key, value gjson.Result) bool {
		if value.IsArray() {
			cmds := []string{}
			for _, c := range value.Array() {
				cmds = append(cmds, c.String())
			}
			s.put(key.String(), Script{Commands: cmds, List: true})
		} else {
			s.put(key.String(), Script{Commands: []string{value.String()}})
		}
		return true
	})
	return s
}

// VendorBin returns the project-relative path of a vendor binary followed by
// its arguments, e.g. "./vendor/bin/pint".
func VendorBin(sep, command string) string {
	if sep == "" {
		sep = string(filepath.Separator)
	}
	return "." + sep + "vendor" + sep + "bin" + sep + command
}
