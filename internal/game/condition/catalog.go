package condition

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults returns the built-in Daggerheart status conditions.
func Defaults() []Condition {
	return []Condition{
		{
			Name: "Hidden",
			ID:   "Hidden",
			Description: "Any rolls against a Hidden creature have disadvantage. " +
				"After an adversary moves to where they would see you, you move into " +
				"their line of sight, or you make an attack, you are no longer Hidden",
		},
		{
			Name:        "Vulnerable",
			ID:          "Vulnerable",
			Description: "When a creature is Vulnerable, all rolls targeting them have advantage",
		},
		{
			Name:        "Restrained",
			ID:          "Restrained",
			Description: "Restrained characters can't move, but can still take actions from their current position",
		},
		{
			Name:        "Unconscious",
			ID:          "Unconscious",
			Description: "This character is unconscious, players get to make a Death Move",
		},
	}
}

// Catalog holds all known conditions keyed by name. Deserialized creature
// statuses are rehydrated against it.
type Catalog struct {
	byName map[string]Condition
	byID   map[string]Condition
	order  []string
}

// NewCatalog creates a catalog pre-populated with the built-in conditions.
func NewCatalog() *Catalog {
	c := &Catalog{
		byName: make(map[string]Condition),
		byID:   make(map[string]Condition),
	}
	for _, def := range Defaults() {
		c.Register(def)
	}
	return c
}

// Register adds def to the catalog, overwriting any existing entry with the
// same name.
//
// Precondition: def.Name must not be empty.
func (c *Catalog) Register(def Condition) {
	if _, ok := c.byName[def.Name]; !ok {
		c.order = append(c.order, def.Name)
	}
	c.byName[def.Name] = def
	if def.ID != "" {
		c.byID[def.ID] = def
	}
}

// Get returns the condition registered under name.
func (c *Catalog) Get(name string) (Condition, bool) {
	def, ok := c.byName[name]
	return def, ok
}

// GetByID returns the condition whose id matches. The auto-status settings
// reference conditions by id, which for homebrew entries may differ from
// the name.
func (c *Catalog) GetByID(id string) (Condition, bool) {
	def, ok := c.byID[id]
	return def, ok
}

// Resolve returns the catalog condition for name, or a synthesized
// description-less condition when the name is unknown.
func (c *Catalog) Resolve(name string) Condition {
	if def, ok := c.byName[name]; ok {
		return def
	}
	return Synthesize(name)
}

// All returns the registered conditions in registration order.
func (c *Catalog) All() []Condition {
	out := make([]Condition, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.byName[name])
	}
	return out
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Condition,
// and registers it on top of the built-in defaults.
//
// Precondition: dir must be a readable directory.
func LoadDirectory(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading condition dir %q: %w", dir, err)
	}
	cat := NewCatalog()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Condition
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if def.ID == "" {
			def.ID = def.Name
		}
		cat.Register(def)
	}
	return cat, nil
}
