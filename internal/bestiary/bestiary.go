// Package bestiary loads pre-authored creature definitions from YAML and
// serves fresh Creature instances to the encounter parser.
package bestiary

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/hearthrpg/tracker/internal/game/creature"
)

// Bestiary is a name-keyed catalog of creature templates.
type Bestiary struct {
	templates map[string]*creature.Creature
	order     []string
	logger    *zap.Logger
}

// New creates an empty bestiary.
func New(logger *zap.Logger) *Bestiary {
	return &Bestiary{templates: make(map[string]*creature.Creature), logger: logger}
}

// Register adds a definition, overwriting any existing entry with the same
// name.
//
// Precondition: def.Name must not be empty.
func (b *Bestiary) Register(def creature.Definition) error {
	thresholds, err := ParseThresholds(def.RawThresholds)
	if err != nil {
		return fmt.Errorf("creature %q: %w", def.Name, err)
	}
	def.Thresholds = thresholds
	if _, ok := b.templates[def.Name]; !ok {
		b.order = append(b.order, def.Name)
	}
	b.templates[def.Name] = creature.FromDefinition(def)
	return nil
}

// GetCreatureFromBestiary returns a fresh instance of the named template.
// Each call clones, so callers may mutate the result freely.
func (b *Bestiary) GetCreatureFromBestiary(name string) (*creature.Creature, bool) {
	template, ok := b.templates[name]
	if !ok {
		return nil, false
	}
	return template.Clone(), true
}

// Names returns the registered creature names in registration order.
func (b *Bestiary) Names() []string {
	return append([]string(nil), b.order...)
}

// Len returns the number of registered templates.
func (b *Bestiary) Len() int {
	return len(b.templates)
}

// Load reads every *.yaml file in dir into a new bestiary. A file holds
// either a single definition or a list of them.
//
// Precondition: dir must be a readable directory.
func Load(dir string, logger *zap.Logger) (*Bestiary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading bestiary dir %q: %w", dir, err)
	}
	b := New(logger)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		defs, err := decodeDefinitions(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		for _, def := range defs {
			if def.Name == "" {
				return nil, fmt.Errorf("parsing %q: definition without a name", path)
			}
			if err := b.Register(def); err != nil {
				return nil, fmt.Errorf("parsing %q: %w", path, err)
			}
		}
	}
	logger.Info("bestiary loaded",
		zap.String("dir", dir),
		zap.Int("creatures", b.Len()),
	)
	return b, nil
}

func decodeDefinitions(data []byte) ([]creature.Definition, error) {
	var list []creature.Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&list); err == nil {
		return list, nil
	}

	var single creature.Definition
	dec = yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&single); err != nil {
		return nil, err
	}
	return []creature.Definition{single}, nil
}

// ParseThresholds parses the statblock "major/severe" shorthand. "None",
// "", and "-" mean no thresholds.
func ParseThresholds(raw string) (creature.Thresholds, error) {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "", "None", "none", "-":
		return creature.Thresholds{}, nil
	}
	parts := strings.Split(raw, "/")
	if len(parts) != 2 {
		return creature.Thresholds{}, fmt.Errorf("thresholds %q: want \"major/severe\"", raw)
	}
	major, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return creature.Thresholds{}, fmt.Errorf("thresholds %q: major: %w", raw, err)
	}
	severe, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return creature.Thresholds{}, fmt.Errorf("thresholds %q: severe: %w", raw, err)
	}
	return creature.Thresholds{Major: major, Severe: severe}, nil
}
