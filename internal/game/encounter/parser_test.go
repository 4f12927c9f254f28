package encounter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/hearthrpg/tracker/internal/game/creature"
	"github.com/hearthrpg/tracker/internal/game/dice"
	"github.com/hearthrpg/tracker/internal/game/encounter"
	"github.com/hearthrpg/tracker/internal/game/party"
)

type stubBestiary struct{ defs map[string]creature.Definition }

func (b stubBestiary) GetCreatureFromBestiary(name string) (*creature.Creature, bool) {
	def, ok := b.defs[name]
	if !ok {
		return nil, false
	}
	return creature.FromDefinition(def), true
}

type fixedSrc struct{ val int }

func (f fixedSrc) Intn(_ int) int { return f.val }

func newParser(t *testing.T, bestiary encounter.Bestiary, roller *dice.Roller) *encounter.Parser {
	t.Helper()
	parties := party.List{{Name: "Heroes", Players: 4, Level: 3}}
	return encounter.NewParser(bestiary, parties, roller, zaptest.NewLogger(t))
}

func parseOne(t *testing.T, p *encounter.Parser, src string) encounter.Parsed {
	t.Helper()
	parsed, err := p.ParseBlocks(src)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	return parsed[0]
}

func TestParse_CountedShorthand(t *testing.T) {
	p := newParser(t, nil, nil)

	parsed := parseOne(t, p, `
creatures:
  - "2: Goblin, 15, 7"
`)
	require.Len(t, parsed.Entries, 1)
	entry := parsed.Entries[0]
	assert.Equal(t, "Goblin", entry.Creature.Name)
	assert.Equal(t, 15, entry.Creature.DC.Max)
	assert.Equal(t, 7, entry.Creature.HP.Max)
	assert.True(t, entry.Count.IsNumeric())
	assert.Equal(t, 2, entry.Count.Value())
}

func TestParse_MergeNumericWithCollapsedDice(t *testing.T) {
	// No roller: the "1d4" count collapses to 1 and the merge stays numeric.
	p := newParser(t, nil, nil)

	parsed := parseOne(t, p, `
creatures:
  - "2: Goblin, 15, 7"
  - 1d4: "Goblin, 15, 7"
`)
	require.Len(t, parsed.Entries, 1)
	count := parsed.Entries[0].Count
	assert.True(t, count.IsNumeric())
	assert.Equal(t, 3, count.Value())
}

func TestParse_MergeKeepsDiceSymbolic(t *testing.T) {
	roller := dice.NewRoller(fixedSrc{val: 1}, zaptest.NewLogger(t))
	p := newParser(t, nil, roller)

	parsed := parseOne(t, p, `
creatures:
  - "2: Goblin, 15, 7"
  - 1d4: "Goblin, 15, 7"
`)
	require.Len(t, parsed.Entries, 1)
	count := parsed.Entries[0].Count
	assert.False(t, count.IsNumeric())
	assert.Equal(t, "1d4 + 2", count.String())

	// fixedSrc val=1 → every die shows 2.
	assert.Equal(t, 4, count.Resolve(roller))
}

func TestParse_DistinctStatsDoNotMerge(t *testing.T) {
	p := newParser(t, nil, nil)

	parsed := parseOne(t, p, `
creatures:
  - "Goblin, 15, 7"
  - "Goblin, 15, 9"
`)
	assert.Len(t, parsed.Entries, 2)
}

func TestParse_ZeroCountRetained(t *testing.T) {
	p := newParser(t, nil, nil)

	parsed := parseOne(t, p, `
creatures:
  - "0: Goblin"
  - -3: Orc
`)
	require.Len(t, parsed.Entries, 2)
	for _, entry := range parsed.Entries {
		assert.True(t, entry.Count.IsNumeric())
		assert.Equal(t, 0, entry.Count.Value())
	}
}

func TestParse_StringFlags(t *testing.T) {
	p := newParser(t, nil, nil)

	parsed := parseOne(t, p, `
creatures:
  - "Goblin, 15, 7, hidden"
  - "Scout, friendly"
`)
	require.Len(t, parsed.Entries, 2)
	assert.True(t, parsed.Entries[0].Creature.Hidden)
	assert.Equal(t, 15, parsed.Entries[0].Creature.DC.Max)
	assert.True(t, parsed.Entries[1].Creature.Friendly)
}

func TestParse_ArrayForms(t *testing.T) {
	p := newParser(t, nil, nil)

	// Flat form: the display name consumes the dc position.
	parsed := parseOne(t, p, `
creatures:
  - [Hobgoblin, Jim, 12, 20]
`)
	require.Len(t, parsed.Entries, 1)
	c := parsed.Entries[0].Creature
	assert.Equal(t, "Hobgoblin", c.Name)
	assert.Equal(t, "Jim", c.Display)
	assert.Equal(t, 0, c.DC.Max)
	assert.Equal(t, 12, c.HP.Max)
	assert.Equal(t, 20, c.Stress.Max)

	// Nested form: numbers start at dc.
	parsed = parseOne(t, p, `
creatures:
  - [[Hobgoblin, Jim], 12, 20, hidden]
`)
	require.Len(t, parsed.Entries, 1)
	c = parsed.Entries[0].Creature
	assert.Equal(t, "Jim", c.Display)
	assert.Equal(t, 12, c.DC.Max)
	assert.Equal(t, 20, c.HP.Max)
	assert.True(t, c.Hidden)
}

func TestParse_StructuredMap(t *testing.T) {
	p := newParser(t, nil, nil)

	parsed := parseOne(t, p, `
creatures:
  - creature: Goblin
    name: Boss
    dc: 13
    hp: 21
    stress: 4
    hidden: true
    ally: true
`)
	require.Len(t, parsed.Entries, 1)
	c := parsed.Entries[0].Creature
	assert.Equal(t, "Goblin", c.Name)
	assert.Equal(t, "Boss", c.Display)
	assert.Equal(t, 13, c.DC.Max)
	assert.Equal(t, 21, c.HP.Max)
	assert.Equal(t, 4, c.Stress.Max)
	assert.True(t, c.Hidden)
	assert.True(t, c.Friendly)
}

func TestParse_BestiaryLookup(t *testing.T) {
	bestiary := stubBestiary{defs: map[string]creature.Definition{
		"Goblin": {Name: "Goblin", HP: 7, DC: 12, Type: "Minion", Tier: 1},
	}}
	p := newParser(t, bestiary, nil)

	// Overrides of 0 leave the bestiary stats intact.
	parsed := parseOne(t, p, `
creatures:
  - "3: Goblin"
`)
	require.Len(t, parsed.Entries, 1)
	c := parsed.Entries[0].Creature
	assert.Equal(t, "Minion", c.Type)
	assert.Equal(t, 7, c.HP.Max)
	assert.Equal(t, 12, c.DC.Max)

	// Explicit stats replace the bestiary values.
	parsed = parseOne(t, p, `
creatures:
  - "Goblin, 15, 9"
`)
	c = parsed.Entries[0].Creature
	assert.Equal(t, 15, c.DC.Max)
	assert.Equal(t, 9, c.HP.Max)
}

func TestParse_PartyAndHide(t *testing.T) {
	p := newParser(t, nil, nil)

	parsed := parseOne(t, p, `
name: Ambush
party: Heroes
hide: creatures
creatures:
  - Goblin
`)
	assert.Equal(t, "Ambush", parsed.Name)
	assert.True(t, parsed.HasParty)
	assert.Equal(t, 4, parsed.Party.Players)
	assert.Equal(t, []string{"creatures"}, parsed.Hide)

	parsed = parseOne(t, p, `
party: Nobody
creatures:
  - Goblin
`)
	assert.False(t, parsed.HasParty)
}

func TestParseBlocks_MalformedBlockSkipped(t *testing.T) {
	p := newParser(t, nil, nil)

	parsed, err := p.ParseBlocks(`
creatures:
  - Goblin
---
creatures: [
---
creatures:
  - Orc
`)
	assert.Error(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, "Goblin", parsed[0].Entries[0].Creature.Name)
	assert.Equal(t, "Orc", parsed[1].Entries[0].Creature.Name)
}

func TestAmount_Resolve(t *testing.T) {
	roller := dice.NewRoller(fixedSrc{val: 2}, zaptest.NewLogger(t))

	assert.Equal(t, 5, encounter.NumericAmount(5).Resolve(nil))

	// val=2 → each die shows 3.
	assert.Equal(t, 8, encounter.SymbolicAmount("1d6 + 5").Resolve(roller))

	// Without a roller dice terms count 1 apiece.
	assert.Equal(t, 6, encounter.SymbolicAmount("1d6 + 5").Resolve(nil))
	assert.Equal(t, 1, encounter.SymbolicAmount("gibberish").Resolve(roller))
}

func TestAmount_Add(t *testing.T) {
	sum := encounter.NumericAmount(2).Add(encounter.NumericAmount(3))
	assert.True(t, sum.IsNumeric())
	assert.Equal(t, 5, sum.Value())

	mixed := encounter.SymbolicAmount("1d4").Add(encounter.NumericAmount(2))
	assert.False(t, mixed.IsNumeric())
	assert.Equal(t, "1d4 + 2", mixed.String())
}

func TestAmount_MergeLaws(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.IntRange(0, 50).Draw(t, "a")
		b := rapid.IntRange(0, 50).Draw(t, "b")

		sum := encounter.NumericAmount(a).Add(encounter.NumericAmount(b))
		require.True(t, sum.IsNumeric())
		require.Equal(t, a+b, sum.Value())

		// Merging a symbolic term keeps both sides visible and resolves to
		// the same total as resolving each side on its own.
		expr := rapid.SampledFrom([]string{"1d4", "2d6", "1d8"}).Draw(t, "expr")
		mixed := encounter.SymbolicAmount(expr).Add(encounter.NumericAmount(b))
		require.False(t, mixed.IsNumeric())
		require.Equal(t, expr+" + "+encounter.NumericAmount(b).String(), mixed.String())
		require.Equal(t,
			encounter.SymbolicAmount(expr).Resolve(nil)+b,
			mixed.Resolve(nil),
		)
	})
}
