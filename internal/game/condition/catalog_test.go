package condition_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthrpg/tracker/internal/game/condition"
)

func TestNewCatalog_Defaults(t *testing.T) {
	cat := condition.NewCatalog()
	for _, name := range []string{"Hidden", "Vulnerable", "Restrained", "Unconscious"} {
		def, ok := cat.Get(name)
		require.True(t, ok, name)
		assert.Equal(t, name, def.ID)
		assert.NotEmpty(t, def.Description)
	}
}

func TestCatalog_ResolveUnknownSynthesizes(t *testing.T) {
	cat := condition.NewCatalog()
	def := cat.Resolve("Dazzled")
	assert.Equal(t, "Dazzled", def.Name)
	assert.Empty(t, def.Description)
	assert.NotEmpty(t, def.ID)

	// Each synthesis mints a fresh id.
	other := cat.Resolve("Dazzled")
	assert.NotEqual(t, def.ID, other.ID)
}

func TestCatalog_GetByID(t *testing.T) {
	cat := condition.NewCatalog()
	cat.Register(condition.Condition{Name: "Knocked Out", ID: "ko", Description: "out cold"})

	def, ok := cat.GetByID("ko")
	require.True(t, ok)
	assert.Equal(t, "Knocked Out", def.Name)

	// Built-ins are reachable by id too (id == name for them).
	_, ok = cat.GetByID("Unconscious")
	assert.True(t, ok)

	_, ok = cat.GetByID("Knocked Out")
	assert.False(t, ok, "GetByID must key on id, not name")
}

func TestCatalog_RegisterOverwrites(t *testing.T) {
	cat := condition.NewCatalog()
	cat.Register(condition.Condition{Name: "Vulnerable", ID: "Vulnerable", Description: "homebrew text"})
	def, ok := cat.Get("Vulnerable")
	require.True(t, ok)
	assert.Equal(t, "homebrew text", def.Description)
	assert.Len(t, cat.All(), len(condition.Defaults()))
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	body := "name: Frightened\ndescription: Cannot approach the source of fear\nreset_on_round: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "frightened.yaml"), []byte(body), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	cat, err := condition.LoadDirectory(dir)
	require.NoError(t, err)

	def, ok := cat.Get("Frightened")
	require.True(t, ok)
	assert.Equal(t, "Frightened", def.ID)
	assert.True(t, def.ResetOnRound)

	// Defaults survive alongside loaded files.
	_, ok = cat.Get("Unconscious")
	assert.True(t, ok)
}

func TestLoadDirectory_UnknownFieldFails(t *testing.T) {
	dir := t.TempDir()
	body := "name: Broken\nseverity: 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(body), 0o644))

	_, err := condition.LoadDirectory(dir)
	assert.Error(t, err)
}

func TestCondition_Same(t *testing.T) {
	a := condition.Condition{Name: "Burning", Amount: 2}
	b := condition.Condition{Name: "Burning", Amount: 2, ID: "other"}
	c := condition.Condition{Name: "Burning", Amount: 3}
	assert.True(t, a.Same(b))
	assert.False(t, a.Same(c))
}
