package rpgsystem

import (
	"fmt"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/hearthrpg/tracker/internal/game/creature"
	"github.com/hearthrpg/tracker/internal/game/party"
	"github.com/hearthrpg/tracker/internal/scripting"
)

// LuaSystem is a difficulty strategy backed by a host-supplied Lua script.
//
// The script runs in a sandboxed VM and must define:
//
//	creature_cost(type, tier, players, level) -> number
//	encounter_budget(players, level) -> number
//
// and may define a display_name string and a unit string. The Go side
// derives remaining budget and the Easy/Balanced/Hard classification so
// every scripted system reports difficulty the same way.
type LuaSystem struct {
	mu     sync.Mutex
	state  *lua.LState
	name   string
	unit   string
	logger *zap.Logger
}

// NewLuaSystem loads the script at path into a sandboxed VM.
//
// Precondition: path must be a readable Lua file defining the required
// functions; logger must be non-nil.
func NewLuaSystem(path string, logger *zap.Logger) (*LuaSystem, error) {
	L := scripting.NewSandboxedState(0)
	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("rpgsystem: loading script %q: %w", path, err)
	}

	for _, fn := range []string{"creature_cost", "encounter_budget"} {
		if _, ok := L.GetGlobal(fn).(*lua.LFunction); !ok {
			L.Close()
			return nil, fmt.Errorf("rpgsystem: script %q does not define %s()", path, fn)
		}
	}

	name := "Scripted"
	if v, ok := L.GetGlobal("display_name").(lua.LString); ok {
		name = string(v)
	}
	unit := "points"
	if v, ok := L.GetGlobal("unit").(lua.LString); ok {
		unit = string(v)
	}

	return &LuaSystem{state: L, name: name, unit: unit, logger: logger}, nil
}

// Close releases the underlying Lua VM.
func (s *LuaSystem) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Close()
}

func (s *LuaSystem) DisplayName() string { return s.name }

func (s *LuaSystem) ValueUnit() string { return s.unit }

func (s *LuaSystem) Difficulties() []string {
	return []string{"Easy", "Balanced", "Hard"}
}

// call invokes a script function and returns its numeric result. Script
// errors are logged and yield 0; a misbehaving script degrades the rating,
// it never breaks the tracker.
func (s *LuaSystem) call(fn string, args ...lua.LValue) float64 {
	if err := s.state.CallByParam(lua.P{
		Fn:      s.state.GetGlobal(fn),
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		s.logger.Warn("difficulty script error",
			zap.String("function", fn),
			zap.Error(err),
		)
		return 0
	}
	ret := s.state.Get(-1)
	s.state.Pop(1)
	if n, ok := ret.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

func (s *LuaSystem) CreatureDifficulty(c *creature.Creature, p party.Party) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.call("creature_cost",
		lua.LString(c.Type), lua.LNumber(c.Tier),
		lua.LNumber(p.Players), lua.LNumber(p.Level),
	)
}

func (s *LuaSystem) AdditionalCreatureDifficultyStats(*creature.Creature, party.Party) []string {
	return nil
}

func (s *LuaSystem) EncounterDifficulty(creatures []CountedCreature, p party.Party) DifficultyLevel {
	s.mu.Lock()
	defer s.mu.Unlock()

	budget := s.call("encounter_budget", lua.LNumber(p.Players), lua.LNumber(p.Level))
	var cost float64
	for _, entry := range creatures {
		cost += s.call("creature_cost",
			lua.LString(entry.Creature.Type), lua.LNumber(entry.Creature.Tier),
			lua.LNumber(p.Players), lua.LNumber(p.Level),
		) * float64(entry.Count)
	}

	remaining := budget - cost
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
		Title:       s.name + " budget",
		Summary: fmt.Sprintf("Encounter is %s\n%g %s remaining",
			displayName, remaining, s.unit),
	}
}

func (s *LuaSystem) DifficultyThresholds(party.Party) []DifficultyThreshold {
	return []DifficultyThreshold{
		{DisplayName: "Hard", MinValue: -1000},
		{DisplayName: "Balanced", MinValue: 0},
		{DisplayName: "Easy", MinValue: 1},
	}
}

func (s *LuaSystem) FormatDifficultyValue(value float64, withUnits bool) string {
	if withUnits {
		return fmt.Sprintf("%g %s", value, s.unit)
	}
	return fmt.Sprintf("%g", value)
}

func (s *LuaSystem) AdditionalDifficultyBudgets(party.Party) []DifficultyThreshold {
	return nil
}
