package rpgsystem

import (
	"fmt"
	"strings"

	"github.com/hearthrpg/tracker/internal/game/creature"
	"github.com/hearthrpg/tracker/internal/game/party"
)

// Daggerheart battle-point costs by adversary type. Minions are priced per
// party member and handled separately.
const (
	costSocial   = 1
	costStandard = 2
	costLeader   = 3
	costBruiser  = 4
	costSolo     = 5
)

// LevelToTier buckets a character level into a Daggerheart tier.
// A missing party (level 0) degrades to tier 1.
func LevelToTier(level int) int {
	switch {
	case level <= 1:
		return 1
	case level <= 4:
		return 2
	case level <= 7:
		return 3
	default:
		return 4
	}
}

// Daggerheart implements the Daggerheart battle-point encounter budget.
type Daggerheart struct{}

// NewDaggerheart returns the Daggerheart strategy.
func NewDaggerheart() *Daggerheart {
	return &Daggerheart{}
}

func (d *Daggerheart) DisplayName() string { return "Daggerheart" }

func (d *Daggerheart) ValueUnit() string { return "BP" }

func (d *Daggerheart) Difficulties() []string {
	return []string{"Easy", "Balanced", "Hard"}
}

// CreatureDifficulty maps an adversary type to its battle-point cost.
// Unknown types cost nothing.
func (d *Daggerheart) CreatureDifficulty(c *creature.Creature, p party.Party) float64 {
	switch {
	case c.Type == "Minion":
		if p.Players <= 0 {
			return 0
		}
		return 1 / float64(p.Players)
	case c.Type == "Social" || c.Type == "Support":
		return costSocial
	case strings.HasPrefix(c.Type, "Horde") || c.Type == "Ranged" ||
		c.Type == "Skulk" || c.Type == "Standard":
		return costStandard
	case c.Type == "Leader":
		return costLeader
	case c.Type == "Bruiser":
		return costBruiser
	case c.Type == "Solo":
		return costSolo
	}
	return 0
}

func (d *Daggerheart) AdditionalCreatureDifficultyStats(c *creature.Creature, p party.Party) []string {
	tier := LevelToTier(p.Level)
	if c.Tier > tier {
		return []string{"Overleveled"}
	}
	if c.Tier < tier {
		return []string{"Underleveled"}
	}
	return nil
}

// isHarderType reports whether the adversary type counts as a "harder"
// monster for the budget adjustment.
func isHarderType(t string) bool {
	return strings.HasPrefix(t, "Horde") || t == "Bruiser" || t == "Leader" || t == "Solo"
}

// EncounterDifficulty rates the encounter against the party's battle-point
// budget of 3 x players + 2, with the published adjustments: -2 when two or
// more Solos are present, +1 when any adversary sits below the party's
// tier, +1 when no harder adversary type is present.
func (d *Daggerheart) EncounterDifficulty(creatures []CountedCreature, p party.Party) DifficultyLevel {
	budget := float64(3*p.Players + 2)
	partyTier := LevelToTier(p.Level)

	var cost float64
	for _, entry := range creatures {
		cost += d.CreatureDifficulty(entry.Creature, p) * float64(entry.Count)
	}

	solos := 0
	lowerTier := false
	harder := false
	for _, entry := range creatures {
		if entry.Creature.Type == "Solo" {
			solos++
		}
		if entry.Creature.Tier < partyTier {
			lowerTier = true
		}
		if isHarderType(entry.Creature.Type) {
			harder = true
		}
	}

	var adjustments float64
	if solos >= 2 {
		adjustments -= 2
	}
	if lowerTier {
		adjustments++
	}
	if !harder {
		adjustments++
	}

	remaining := budget - cost + adjustments

	displayName := "Balanced"
	switch {
	case remaining > 0:
		displayName = "Easy"
	case remaining < 0:
		displayName = "Hard"
	}

	return DifficultyLevel{
		DisplayName: displayName,
		CSSClass:    strings.ToLower(displayName),
		Value:       remaining,
		Title:       "Battle Points",
		Summary: fmt.Sprintf("Encounter is %s\n%g Battle Points remaining",
			displayName, remaining),
	}
}

func (d *Daggerheart) DifficultyThresholds(party.Party) []DifficultyThreshold {
	return []DifficultyThreshold{
		{DisplayName: "Hard", MinValue: -1000},
		{DisplayName: "Balanced", MinValue: 0},
		{DisplayName: "Easy", MinValue: 1},
	}
}

func (d *Daggerheart) FormatDifficultyValue(value float64, withUnits bool) string {
	if withUnits {
		return fmt.Sprintf("%g %s", value, d.ValueUnit())
	}
	return fmt.Sprintf("%g", value)
}

func (d *Daggerheart) AdditionalDifficultyBudgets(party.Party) []DifficultyThreshold {
	return nil
}
