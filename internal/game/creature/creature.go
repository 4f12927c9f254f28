// Package creature defines the combatant entity tracked through an
// encounter: identity, resources, status conditions, and display metadata.
package creature

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/hearthrpg/tracker/internal/game/condition"
)

// Creature is one combat participant, monster or player character.
//
// Creatures are mutated exclusively through the tracker's update pipeline;
// other holders must treat them as read-only. The Status set is only
// reachable through AddCondition/RemoveCondition, which enforce the
// no-duplicate-status invariant.
type Creature struct {
	Name    string
	Display string // overrides Name in UI and in the numbering dedup key
	ID      string
	Player  bool

	HP         *Resource
	Stress     *Resource
	DC         *Resource
	Thresholds Thresholds
	Atk        int

	Type string // classification consumed by the difficulty strategy
	Tier int

	Note          string
	Path          string
	StatblockLink string
	Marker        string
	Source        string

	Enabled  bool // participates in turn order
	Hidden   bool // visibility only; does not affect turn order
	Friendly bool // excluded from enemy-difficulty accounting
	// Spotlight marks the creature currently holding the turn. At most one
	// creature in a roster has it set.
	Spotlight bool

	// Number disambiguates creatures sharing a display name; 0 means no
	// suffix is needed.
	Number int
	// ManualOrder is the explicit sort key set by drag-reordering; nil when
	// the creature has never been manually placed.
	ManualOrder *int

	status []condition.Condition
}

// Definition is the raw creature description produced by the bestiary or
// the encounter parser. Zero resource values mean "unset".
type Definition struct {
	Name          string     `yaml:"name"`
	Display       string     `yaml:"display,omitempty"`
	DC            int        `yaml:"dc,omitempty"`
	HP            int        `yaml:"hp,omitempty"`
	Stress        int        `yaml:"stress,omitempty"`
	Thresholds    Thresholds `yaml:"-"`
	RawThresholds string     `yaml:"thresholds,omitempty"` // "major/severe" or "None"
	Atk           int        `yaml:"atk,omitempty"`
	Type          string     `yaml:"type,omitempty"`
	Tier          int        `yaml:"tier,omitempty"`
	Note          string     `yaml:"note,omitempty"`
	Path          string     `yaml:"path,omitempty"`
	StatblockLink string     `yaml:"statblock_link,omitempty"`
	Marker        string     `yaml:"marker,omitempty"`
	Source        string     `yaml:"source,omitempty"`
	Player        bool       `yaml:"player,omitempty"`
	Hidden        bool       `yaml:"hidden,omitempty"`
	Friendly      bool       `yaml:"friendly,omitempty"`
	ID            string     `yaml:"id,omitempty"`
}

// FromDefinition builds a Creature from def. An id is generated when the
// definition carries none.
func FromDefinition(def Definition) *Creature {
	id := def.ID
	if id == "" {
		id = uuid.NewString()
	}
	return &Creature{
		Name:          def.Name,
		Display:       def.Display,
		ID:            id,
		Player:        def.Player,
		HP:            NewResource(def.HP),
		Stress:        NewResource(def.Stress),
		DC:            NewResource(def.DC),
		Thresholds:    def.Thresholds,
		Atk:           def.Atk,
		Type:          def.Type,
		Tier:          def.Tier,
		Note:          def.Note,
		Path:          def.Path,
		StatblockLink: def.StatblockLink,
		Marker:        def.Marker,
		Source:        def.Source,
		Hidden:        def.Hidden,
		Friendly:      def.Friendly,
		Enabled:       true,
	}
}

// New builds a minimal ad-hoc creature for a name with no bestiary entry.
func New(name string) *Creature {
	return FromDefinition(Definition{Name: name})
}

// Clone returns a structural copy sharing c's base stats but with a fresh
// identity and full resources. Used when expanding a parsed encounter entry
// into individual roster members.
func (c *Creature) Clone() *Creature {
	dup := *c
	dup.ID = uuid.NewString()
	dup.HP = NewResource(c.HP.Max)
	dup.Stress = NewResource(c.Stress.Max)
	dup.DC = NewResource(c.DC.Max)
	dup.Number = 0
	dup.Spotlight = false
	dup.ManualOrder = nil
	dup.status = append([]condition.Condition(nil), c.status...)
	return &dup
}

// GetName returns the display name (or name), suffixed with the
// disambiguating number when one is assigned. Used both for UI and as the
// combat-log key.
func (c *Creature) GetName() string {
	name := c.Name
	if c.Display != "" {
		name = c.Display
	}
	if c.Number > 0 {
		return fmt.Sprintf("%s %d", name, c.Number)
	}
	return name
}

// NameKey returns the display-or-name key used for numbering dedup.
func (c *Creature) NameKey() string {
	if c.Display != "" {
		return c.Display
	}
	return c.Name
}

// AddCondition inserts cond unless an entry with identical (name, amount)
// already exists. Idempotent.
func (c *Creature) AddCondition(cond condition.Condition) {
	for _, existing := range c.status {
		if existing.Same(cond) {
			return
		}
	}
	c.status = append(c.status, cond)
}

// RemoveCondition removes all status entries whose id matches cond's.
func (c *Creature) RemoveCondition(cond condition.Condition) {
	kept := c.status[:0]
	for _, existing := range c.status {
		if existing.ID != cond.ID {
			kept = append(kept, existing)
		}
	}
	c.status = kept
}

// ClearConditions removes every status condition.
func (c *Creature) ClearConditions() {
	c.status = nil
}

// ClearRoundConditions removes every status flagged to reset when a new
// round begins.
func (c *Creature) ClearRoundConditions() {
	kept := c.status[:0]
	for _, existing := range c.status {
		if !existing.ResetOnRound {
			kept = append(kept, existing)
		}
	}
	c.status = kept
}

// Conditions returns a snapshot of the active status conditions.
func (c *Creature) Conditions() []condition.Condition {
	return append([]condition.Condition(nil), c.status...)
}

// Stats is the comparison-friendly projection used for encounter
// deduplication and difficulty grouping.
type Stats struct {
	Name     string
	Display  string
	DC       int
	HP       int
	Stress   int
	Atk      int
	Hidden   bool
	Friendly bool
}

// GetStats projects the creature into its equivalence tuple.
func (c *Creature) GetStats() Stats {
	return Stats{
		Name:     c.Name,
		Display:  c.Display,
		DC:       c.DC.Max,
		HP:       c.HP.Max,
		Stress:   c.Stress.Max,
		Atk:      c.Atk,
		Hidden:   c.Hidden,
		Friendly: c.Friendly,
	}
}

// MatchesStats reports full-field equivalence against a stat tuple. All
// fields must match for two encounter entries to merge.
func (c *Creature) MatchesStats(s Stats) bool {
	return c.GetStats() == s
}
