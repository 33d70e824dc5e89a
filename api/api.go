// Package api describes which commands belong to which API scope: core
// versions and extensions, each tied to the dispatch level its commands
// are resolved at.
package api

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Level is the dispatch level a scope's commands are resolved at.
type Level int

const (
	Global Level = iota
	Instance
	Device
)

var levelNames = [...]string{"global", "instance", "device"}

// Levels lists every level in dispatch order.
var Levels = []Level{Global, Instance, Device}

func (l Level) String() string {
	if l >= 0 && int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel parses a level name.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("unknown level %q (want global, instance or device)", s)
}

func (l Level) MarshalText() ([]byte, error) {
	if l < 0 || int(l) >= len(levelNames) {
		return nil, fmt.Errorf("invalid level %d", int(l))
	}
	return []byte(levelNames[l]), nil
}

func (l *Level) UnmarshalText(text []byte) error {
	v, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Scope is one versioned or extension API unit.
type Scope struct {
	Name     string   `toml:"name"`
	Level    Level    `toml:"level"`
	Core     bool     `toml:"core"`
	Commands []string `toml:"commands"`
}

// Description is the set of scopes a loader is generated for.
type Description struct {
	Scopes []Scope `toml:"scope"`
}

// Load reads a description from a TOML file.
func Load(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return d, nil
}

// Parse decodes a TOML description and returns it normalized.
func Parse(data []byte) (*Description, error) {
	var d Description
	md, err := toml.Decode(string(data), &d)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %s", undecoded[0])
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	d.Normalize()
	return &d, nil
}

// Validate reports scopes without a name and scopes declared twice for the
// same level. A version may appear once per level.
func (d *Description) Validate() error {
	type key struct {
		name  string
		level Level
	}
	seen := make(map[key]bool, len(d.Scopes))
	for i, s := range d.Scopes {
		if s.Name == "" {
			return fmt.Errorf("scope %d has no name", i)
		}
		k := key{s.Name, s.Level}
		if seen[k] {
			return fmt.Errorf("duplicate %s scope %s", s.Level, s.Name)
		}
		seen[k] = true
	}
	return nil
}

// Normalize removes duplicate commands within each scope, keeping the first
// occurrence.
func (d *Description) Normalize() {
	for i := range d.Scopes {
		d.Scopes[i].Commands = dedupe(d.Scopes[i].Commands)
	}
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, c := range in {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Scope returns the first scope with the given name.
func (d *Description) Scope(name string) (*Scope, bool) {
	for i := range d.Scopes {
		if d.Scopes[i].Name == name {
			return &d.Scopes[i], true
		}
	}
	return nil, false
}

// Encode writes d as TOML.
func (d *Description) Encode() ([]byte, error) {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(d); err != nil {
		return nil, fmt.Errorf("api: encode description: %w", err)
	}
	return []byte(sb.String()), nil
}
