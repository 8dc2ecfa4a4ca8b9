// Package purpose provides the catalog of purposes a text can be rewritten for, along with the
// presets offered for tone, style, audience, length and edit intensity.
package purpose

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is the set of purposes and presets offered to the user.
type Catalog struct {
	Purposes         []Major     `yaml:"purposes"`
	DefaultStructure string      `yaml:"default_structure"`
	Tones            []string    `yaml:"tones"`
	Styles           []string    `yaml:"styles"`
	Audiences        []string    `yaml:"audiences"`
	Personas         []string    `yaml:"personas"`
	Models           []string    `yaml:"models"`
	Lengths          []Length    `yaml:"lengths"`
	Intensities      []Intensity `yaml:"intensities"`
}

// Major is a major purpose, e.g., "Business", with its minor purposes in display order.
type Major struct {
	Name   string  `yaml:"name"`
	Minors []Minor `yaml:"minors"`
}

// Minor is a minor purpose, e.g., "Email", with the structure a text for it should follow.
type Minor struct {
	Name      string `yaml:"name"`
	Structure string `yaml:"structure"`
}

// Length is a length preset. Chars is the target length in characters.
type Length struct {
	Name  string `yaml:"name"`
	Chars int    `yaml:"chars"`
}

// Intensity is an edit intensity preset.
type Intensity struct {
	Name        string `yaml:"name"`
	Instruction string `yaml:"instruction"`
}

// Suggestion is a purpose the same text could be repurposed for. Free-form suggestions only have a
// Minor.
type Suggestion struct {
	Major string `json:"major_purpose,omitempty"`
	Minor string `json:"minor_purpose"`
}

func (s Suggestion) String() string {
	if s.Major == "" {
		return s.Minor
	}
	return s.Major + " → " + s.Minor
}

//go:embed default.yaml
var defaultCatalog []byte

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("invalid default catalog: %v", err))
	}
	return c
}

// Load reads and validates the catalog in file.
func Load(file string) (*Catalog, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %v", err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", file, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(in []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(in, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %v", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports all problems of the catalog at once.
func (c *Catalog) Validate() error {
	var errs []error
	errorf := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if len(c.Purposes) == 0 {
		errorf("no purposes")
	}
	majors := make(map[string]bool)
	minors := make(map[string]string)
	for _, m := range c.Purposes {
		if m.Name == "" {
			errorf("purpose without name")
		}
		if majors[m.Name] {
			errorf("duplicate purpose %q", m.Name)
		}
		majors[m.Name] = true
		if len(m.Minors) == 0 {
			errorf("purpose %q has no minor purposes", m.Name)
		}
		for _, mi := range m.Minors {
			if mi.Name == "" {
				errorf("purpose %q: minor purpose without name", m.Name)
			}
			if other, ok := minors[mi.Name]; ok {
				errorf("minor purpose %q appears in %q and %q", mi.Name, other, m.Name)
			}
			minors[mi.Name] = m.Name
		}
	}

	lengths := make(map[string]bool)
	for _, l := range c.Lengths {
		if l.Chars <= 0 {
			errorf("length %q: chars must be positive, got %d", l.Name, l.Chars)
		}
		if lengths[l.Name] {
			errorf("duplicate length %q", l.Name)
		}
		lengths[l.Name] = true
	}
	if len(c.Lengths) == 0 {
		errorf("no lengths")
	}

	intensities := make(map[string]bool)
	for _, in := range c.Intensities {
		if intensities[in.Name] {
			errorf("duplicate intensity %q", in.Name)
		}
		intensities[in.Name] = true
	}
	if len(c.Intensities) == 0 {
		errorf("no intensities")
	}

	return errors.Join(errs...)
}

// Major returns the major purpose with the given name, or nil if there is none.
func (c *Catalog) Major(name string) *Major {
	for i := range c.Purposes {
		if c.Purposes[i].Name == name {
			return &c.Purposes[i]
		}
	}
	return nil
}

// Minor returns the minor purpose with the given name within major, or nil if there is none.
func (c *Catalog) Minor(major, minor string) *Minor {
	m := c.Major(major)
	if m == nil {
		return nil
	}
	for i := range m.Minors {
		if m.Minors[i].Name == minor {
			return &m.Minors[i]
		}
	}
	return nil
}

// MajorOf returns the name of the major purpose minor belongs to, or "" if there is none. Minor
// purpose names are unique within a valid catalog.
func (c *Catalog) MajorOf(minor string) string {
	for _, m := range c.Purposes {
		for _, mi := range m.Minors {
			if mi.Name == minor {
				return m.Name
			}
		}
	}
	return ""
}

// Structure returns the structure template for a minor purpose, falling back to the catalog's
// default structure.
func (c *Catalog) Structure(major, minor string) string {
	if mi := c.Minor(major, minor); mi != nil && mi.Structure != "" {
		return mi.Structure
	}
	if c.DefaultStructure != "" {
		return c.DefaultStructure
	}
	return "Logical structure"
}

// Length returns the length preset with the given name.
func (c *Catalog) Length(name string) (Length, bool) {
	for _, l := range c.Lengths {
		if l.Name == name {
			return l, true
		}
	}
	return Length{}, false
}

// Intensity returns the intensity preset with the given name.
func (c *Catalog) Intensity(name string) (Intensity, bool) {
	for _, in := range c.Intensities {
		if in.Name == name {
			return in, true
		}
	}
	return Intensity{}, false
}

// Suggestions returns other purposes the same text could serve: first the other minor purposes of
// major, and if there are fewer than two of those, the first minor purpose of other majors until
// there are at least three suggestions.
func (c *Catalog) Suggestions(major, minor string) []Suggestion {
	var ret []Suggestion
	if m := c.Major(major); m != nil {
		for _, mi := range m.Minors {
			if mi.Name != minor {
				ret = append(ret, Suggestion{major, mi.Name})
			}
		}
	}
	if len(ret) >= 2 {
		return ret
	}
	for _, m := range c.Purposes {
		if m.Name == major || len(m.Minors) == 0 {
			continue
		}
		ret = append(ret, Suggestion{m.Name, m.Minors[0].Name})
		if len(ret) >= 3 {
			break
		}
	}
	return ret
}
