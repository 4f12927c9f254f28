package bestiary_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/hearthrpg/tracker/internal/bestiary"
	"github.com/hearthrpg/tracker/internal/game/creature"
)

func writeBestiary(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeBestiary(t, map[string]string{
		"adversaries.yaml": `
- name: Goblin
  hp: 7
  dc: 12
  stress: 3
  type: Minion
  tier: 1
  thresholds: 4/8
- name: Ogre
  hp: 20
  dc: 15
  type: Bruiser
  tier: 2
  thresholds: None
`,
		"solo.yaml": `
name: Dire Wolf
hp: 12
dc: 13
type: Skulk
tier: 1
thresholds: 6/11
`,
		"notes.txt": "ignored",
	})

	b, err := bestiary.Load(dir, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 3, b.Len())

	goblin, ok := b.GetCreatureFromBestiary("Goblin")
	require.True(t, ok)
	assert.Equal(t, 7, goblin.HP.Max)
	assert.Equal(t, creature.Thresholds{Major: 4, Severe: 8}, goblin.Thresholds)
	assert.Equal(t, "Minion", goblin.Type)

	ogre, ok := b.GetCreatureFromBestiary("Ogre")
	require.True(t, ok)
	assert.Equal(t, creature.Thresholds{}, ogre.Thresholds)

	_, ok = b.GetCreatureFromBestiary("Tarrasque")
	assert.False(t, ok)
}

func TestLoad_FreshInstancePerLookup(t *testing.T) {
	dir := writeBestiary(t, map[string]string{
		"goblin.yaml": "name: Goblin\nhp: 7\n",
	})
	b, err := bestiary.Load(dir, zaptest.NewLogger(t))
	require.NoError(t, err)

	first, _ := b.GetCreatureFromBestiary("Goblin")
	first.HP.Current = 1
	first.Display = "Scarred"

	second, _ := b.GetCreatureFromBestiary("Goblin")
	assert.Equal(t, 7, second.HP.Current, "lookups must not share state")
	assert.Empty(t, second.Display)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestLoad_BadThresholds(t *testing.T) {
	dir := writeBestiary(t, map[string]string{
		"bad.yaml": "name: Goblin\nthresholds: lots\n",
	})
	_, err := bestiary.Load(dir, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	dir := writeBestiary(t, map[string]string{
		"bad.yaml": "name: Goblin\nhitpoints: 7\n",
	})
	_, err := bestiary.Load(dir, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestParseThresholds(t *testing.T) {
	th, err := bestiary.ParseThresholds(" 8 / 15 ")
	require.NoError(t, err)
	assert.Equal(t, creature.Thresholds{Major: 8, Severe: 15}, th)

	th, err = bestiary.ParseThresholds("None")
	require.NoError(t, err)
	assert.Equal(t, creature.Thresholds{}, th)

	_, err = bestiary.ParseThresholds("8/15/20")
	assert.Error(t, err)
}
