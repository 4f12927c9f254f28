package rpgsystem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hearthrpg/tracker/internal/game/creature"
	"github.com/hearthrpg/tracker/internal/game/party"
	"github.com/hearthrpg/tracker/internal/game/rpgsystem"
)

func adversary(typ string, tier int) *creature.Creature {
	c := creature.FromDefinition(creature.Definition{Name: typ, Type: typ, Tier: tier})
	return c
}

func TestLevelToTier(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 2: 2, 4: 2, 5: 3, 7: 3, 8: 4, 10: 4}
	for level, tier := range cases {
		assert.Equal(t, tier, rpgsystem.LevelToTier(level), "level %d", level)
	}
}

func TestDaggerheart_CreatureDifficulty(t *testing.T) {
	d := rpgsystem.NewDaggerheart()
	p := party.Party{Players: 4, Level: 3}

	assert.InDelta(t, 0.25, d.CreatureDifficulty(adversary("Minion", 2), p), 0.001)
	assert.Equal(t, 1.0, d.CreatureDifficulty(adversary("Social", 2), p))
	assert.Equal(t, 1.0, d.CreatureDifficulty(adversary("Support", 2), p))
	assert.Equal(t, 2.0, d.CreatureDifficulty(adversary("Horde (3/HP)", 2), p))
	assert.Equal(t, 2.0, d.CreatureDifficulty(adversary("Ranged", 2), p))
	assert.Equal(t, 2.0, d.CreatureDifficulty(adversary("Skulk", 2), p))
	assert.Equal(t, 2.0, d.CreatureDifficulty(adversary("Standard", 2), p))
	assert.Equal(t, 3.0, d.CreatureDifficulty(adversary("Leader", 2), p))
	assert.Equal(t, 4.0, d.CreatureDifficulty(adversary("Bruiser", 2), p))
	assert.Equal(t, 5.0, d.CreatureDifficulty(adversary("Solo", 2), p))
	assert.Equal(t, 0.0, d.CreatureDifficulty(adversary("Mystery", 2), p))
}

// Two tier-2 Standards and a tier-2 Leader against a 4-player level-3
// party: budget 14, cost 7, no adjustments, 7 BP remaining, Easy.
func TestDaggerheart_EncounterDifficulty_Easy(t *testing.T) {
	d := rpgsystem.NewDaggerheart()
	p := party.Party{Players: 4, Level: 3}

	level := d.EncounterDifficulty([]rpgsystem.CountedCreature{
		{Creature: adversary("Standard", 2), Count: 2},
		{Creature: adversary("Leader", 2), Count: 1},
	}, p)

	assert.Equal(t, "Easy", level.DisplayName)
	assert.Equal(t, "easy", level.CSSClass)
	assert.Equal(t, 7.0, level.Value)
	assert.Equal(t, "Battle Points", level.Title)
	assert.Contains(t, level.Summary, "Encounter is Easy")
}

func TestDaggerheart_EncounterDifficulty_Adjustments(t *testing.T) {
	d := rpgsystem.NewDaggerheart()
	p := party.Party{Players: 2, Level: 3} // budget 8, tier 2

	// Two Solos: cost 10, solo penalty -2, no lower tier, harder present.
	level := d.EncounterDifficulty([]rpgsystem.CountedCreature{
		{Creature: adversary("Solo", 2), Count: 1},
		{Creature: adversary("Solo", 2), Count: 1},
	}, p)
	assert.Equal(t, -4.0, level.Value)
	assert.Equal(t, "Hard", level.DisplayName)

	// A lone underleveled Social: cost 1, +1 lower tier, +1 no harder type.
	level = d.EncounterDifficulty([]rpgsystem.CountedCreature{
		{Creature: adversary("Social", 1), Count: 1},
	}, p)
	assert.Equal(t, 9.0, level.Value)
	assert.Equal(t, "Easy", level.DisplayName)
}

func TestDaggerheart_EncounterDifficulty_Balanced(t *testing.T) {
	d := rpgsystem.NewDaggerheart()
	p := party.Party{Players: 1, Level: 3} // budget 5, tier 2

	// One Solo at party tier: cost 5, no adjustments, remaining 0.
	level := d.EncounterDifficulty([]rpgsystem.CountedCreature{
		{Creature: adversary("Solo", 2), Count: 1},
	}, p)
	assert.Equal(t, 0.0, level.Value)
	assert.Equal(t, "Balanced", level.DisplayName)
}

// A missing party degrades to {players: 0, level: 0}: budget 2, tier 1.
func TestDaggerheart_EncounterDifficulty_MissingParty(t *testing.T) {
	d := rpgsystem.NewDaggerheart()

	level := d.EncounterDifficulty([]rpgsystem.CountedCreature{
		{Creature: adversary("Standard", 1), Count: 1},
	}, party.Party{})

	// budget 2 - cost 2 + 1 (no harder type) = 1
	assert.Equal(t, 1.0, level.Value)
	assert.Equal(t, "Easy", level.DisplayName)

	assert.Equal(t, 0.0, d.CreatureDifficulty(adversary("Minion", 1), party.Party{}),
		"minion cost must not divide by zero")
}

func TestDaggerheart_AdditionalCreatureStats(t *testing.T) {
	d := rpgsystem.NewDaggerheart()
	p := party.Party{Players: 4, Level: 3} // tier 2

	assert.Equal(t, []string{"Overleveled"}, d.AdditionalCreatureDifficultyStats(adversary("Standard", 3), p))
	assert.Equal(t, []string{"Underleveled"}, d.AdditionalCreatureDifficultyStats(adversary("Standard", 1), p))
	assert.Empty(t, d.AdditionalCreatureDifficultyStats(adversary("Standard", 2), p))
}

func TestDaggerheart_Thresholds(t *testing.T) {
	d := rpgsystem.NewDaggerheart()
	thresholds := d.DifficultyThresholds(party.Party{Players: 4, Level: 3})

	assert.Equal(t, []rpgsystem.DifficultyThreshold{
		{DisplayName: "Hard", MinValue: -1000},
		{DisplayName: "Balanced", MinValue: 0},
		{DisplayName: "Easy", MinValue: 1},
	}, thresholds)
}

func TestRegistry(t *testing.T) {
	r := rpgsystem.NewRegistry()

	assert.Equal(t, "Daggerheart", r.Get(rpgsystem.SystemDaggerheart).DisplayName())
	assert.Equal(t, rpgsystem.DefaultUndefined, r.Get("unknown").DisplayName())
	assert.Equal(t, rpgsystem.DefaultUndefined, r.Get("").DisplayName())

	r.Register("custom", rpgsystem.NewDaggerheart())
	assert.Contains(t, r.IDs(), "custom")
}

func TestFormatDifficultyValue(t *testing.T) {
	d := rpgsystem.NewDaggerheart()
	assert.Equal(t, "7 BP", d.FormatDifficultyValue(7, true))
	assert.Equal(t, "7", d.FormatDifficultyValue(7, false))
	assert.Equal(t, "0.25 BP", d.FormatDifficultyValue(0.25, true))
}
