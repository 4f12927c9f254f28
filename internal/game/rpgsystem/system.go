// Package rpgsystem provides the pluggable encounter-difficulty strategy
// layer. Strategies are registered under a system identifier and selected
// by the host's settings.
package rpgsystem

import (
	"fmt"

	"github.com/hearthrpg/tracker/internal/game/creature"
	"github.com/hearthrpg/tracker/internal/game/party"
)

// DefaultUndefined is rendered wherever a system has no meaningful value.
const DefaultUndefined = "—"

// CountedCreature pairs a grouped creature with how many of it the
// encounter contains.
type CountedCreature struct {
	Creature *creature.Creature
	Count    int
}

// IntermediateValue is one labelled step of a difficulty calculation that
// should be surfaced alongside the final rating.
type IntermediateValue struct {
	Label string
	Value float64
}

// DifficultyLevel is the rating a strategy assigns to an encounter.
type DifficultyLevel struct {
	// DisplayName is the rating label, e.g. "Hard".
	DisplayName string
	// CSSClass is the presentation hook for the label.
	CSSClass string
	// Value is the number the rating was derived from.
	Value float64
	// Title labels Value, e.g. "Battle Points".
	Title string
	// Summary is a multi-line human-readable explanation.
	Summary string
	// Intermediate holds calculation steps worth displaying.
	Intermediate []IntermediateValue
}

// DifficultyThreshold is one band boundary, keyed by the minimum value that
// reaches it.
type DifficultyThreshold struct {
	DisplayName string
	MinValue    float64
}

// System scores creatures and encounters against a party definition.
type System interface {
	// DisplayName is the system's name as shown to users.
	DisplayName() string
	// ValueUnit is the unit difficulty values are expressed in, e.g. "BP".
	ValueUnit() string
	// Difficulties returns the ordered rating labels the system can emit.
	Difficulties() []string
	// CreatureDifficulty scores one creature's contribution.
	CreatureDifficulty(c *creature.Creature, p party.Party) float64
	// AdditionalCreatureDifficultyStats returns extra per-creature notes,
	// e.g. tier mismatches.
	AdditionalCreatureDifficultyStats(c *creature.Creature, p party.Party) []string
	// EncounterDifficulty rates a whole encounter.
	EncounterDifficulty(creatures []CountedCreature, p party.Party) DifficultyLevel
	// DifficultyThresholds returns the rating bands in ascending order.
	DifficultyThresholds(p party.Party) []DifficultyThreshold
	// FormatDifficultyValue renders a value with or without units.
	FormatDifficultyValue(value float64, withUnits bool) string
	// AdditionalDifficultyBudgets returns display-only budgets that do not
	// feed the rating itself.
	AdditionalDifficultyBudgets(p party.Party) []DifficultyThreshold
}

// Base supplies no-op defaults so concrete systems only override what they
// use.
type Base struct {
	Name string
	Unit string
}

func (b Base) DisplayName() string {
	if b.Name == "" {
		return DefaultUndefined
	}
	return b.Name
}

func (b Base) ValueUnit() string {
	if b.Unit == "" {
		return "XP"
	}
	return b.Unit
}

func (b Base) Difficulties() []string {
	return []string{DefaultUndefined, DefaultUndefined}
}

func (b Base) CreatureDifficulty(*creature.Creature, party.Party) float64 { return 0 }

func (b Base) AdditionalCreatureDifficultyStats(*creature.Creature, party.Party) []string {
	return nil
}

func (b Base) EncounterDifficulty([]CountedCreature, party.Party) DifficultyLevel {
	return DifficultyLevel{
		DisplayName: DefaultUndefined,
		Title:       "Total XP",
		Summary:     DefaultUndefined,
	}
}

func (b Base) DifficultyThresholds(party.Party) []DifficultyThreshold { return nil }

func (b Base) FormatDifficultyValue(value float64, withUnits bool) string {
	if withUnits {
		return fmt.Sprintf("%g %s", value, b.ValueUnit())
	}
	return fmt.Sprintf("%g", value)
}

func (b Base) AdditionalDifficultyBudgets(party.Party) []DifficultyThreshold { return nil }

// Undefined is the no-op default strategy used when no system is selected.
type Undefined struct {
	Base
}

// NewUndefined returns the no-op strategy.
func NewUndefined() *Undefined {
	return &Undefined{}
}
