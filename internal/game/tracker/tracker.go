// Package tracker implements the encounter state machine: the live roster,
// the round and spotlight pointer, the mutation pipeline, and the glue to
// the combat log, the persistence sink, and the difficulty strategies.
package tracker

import (
	"sort"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/hearthrpg/tracker/internal/game/combatlog"
	"github.com/hearthrpg/tracker/internal/game/condition"
	"github.com/hearthrpg/tracker/internal/game/creature"
	"github.com/hearthrpg/tracker/internal/game/party"
	"github.com/hearthrpg/tracker/internal/game/rpgsystem"
)

// HP overflow policies.
const (
	OverflowAllow  = "allow"
	OverflowIgnore = "ignore"
)

// Settings are the combat-rules toggles the mutation pipeline consults.
type Settings struct {
	RPGSystem     string
	MassiveDamage bool
	Clamp         bool
	HPOverflow    string
	AutoStatus    bool
	UnconsciousID string
	VulnerableID  string
}

// Persister receives the full encounter snapshot after every mutation
// batch. Implementations own debouncing and write ordering; the tracker
// only signals that state is dirty.
type Persister interface {
	SaveState(state EncounterState)
}

// CombatLog is the session transcript collaborator.
type CombatLog interface {
	Start(session combatlog.Session) error
	Resume(path string) error
	Log(parts ...string)
	LogUpdate(messages []combatlog.UpdateMessage)
	Logging() bool
	FilePath() string
	Stop()
}

// EncounterState is the persisted snapshot exchanged with the persistence
// collaborator and with encounter documents.
type EncounterState struct {
	Creatures []creature.State `json:"creatures"`
	Active    bool             `json:"state"`
	Party     string           `json:"party"`
	Name      string           `json:"name"`
	Round     int              `json:"round"`
	LogFile   string           `json:"logFile"`
	NewLog    bool             `json:"newLog,omitempty"`
	Roll      bool             `json:"roll,omitempty"`
	RollHP    bool             `json:"rollHP,omitempty"`
	Timestamp int64            `json:"timestamp,omitempty"`
}

// Tracker owns the encounter roster. It is the sole writer of creature
// state; callers route every mutation through its operations.
type Tracker struct {
	mu sync.Mutex

	settings Settings
	catalog  *condition.Catalog
	systems  *rpgsystem.Registry
	parties  party.Lookup
	log      CombatLog
	sink     Persister
	logger   *zap.Logger

	creatures []*creature.Creature
	round     int
	active    bool
	name      string
	party     string
	pending   map[*creature.Creature]UpdateModifiers
	pendOrder []*creature.Creature
}

// New creates a Tracker. log and sink may be nil; catalog, systems, and
// logger must not be.
func New(settings Settings, catalog *condition.Catalog, systems *rpgsystem.Registry,
	parties party.Lookup, log CombatLog, sink Persister, logger *zap.Logger) *Tracker {
	return &Tracker{
		settings: settings,
		catalog:  catalog,
		systems:  systems,
		parties:  parties,
		log:      log,
		sink:     sink,
		logger:   logger,
		round:    1,
		pending:  make(map[*creature.Creature]UpdateModifiers),
	}
}

// Round returns the current round counter.
func (t *Tracker) Round() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.round
}

// Active reports whether combat is in progress.
func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Name returns the encounter name.
func (t *Tracker) Name() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.name
}

// PartyName returns the referenced party name.
func (t *Tracker) PartyName() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.party
}

// Creatures returns a snapshot of the roster in insertion order.
func (t *Tracker) Creatures() []*creature.Creature {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*creature.Creature(nil), t.creatures...)
}

// Ordered returns the roster in turn order: creatures carrying a manual
// sort key first by that key, everything else in insertion order.
func (t *Tracker) Ordered() []*creature.Creature {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ordered()
}

func (t *Tracker) ordered() []*creature.Creature {
	out := append([]*creature.Creature(nil), t.creatures...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].ManualOrder, out[j].ManualOrder
		if a == nil || b == nil || *a == *b {
			return false
		}
		return *a < *b
	})
	return out
}

// SetParty points the tracker at a configured party by name.
func (t *Tracker) SetParty(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.party = name
	t.save()
}

// SetState starts or stops combat. Starting opens (or resumes) the session
// log and gives the spotlight to the first ordered creature if nobody
// holds it.
func (t *Tracker) SetState(active bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = active

	if t.log != nil {
		if active {
			if !t.log.Logging() {
				order := t.ordered()
				session := combatlog.Session{Name: t.name, Round: t.round}
				for _, c := range order {
					if c.Player {
						session.Players = append(session.Players, c.GetName())
					} else {
						session.Creatures = append(session.Creatures, c.GetName())
					}
				}
				if err := t.log.Start(session); err != nil {
					t.logger.Warn("starting combat log", zap.Error(err))
				}
			} else {
				t.log.Log("Combat re-started")
			}
		} else {
			t.log.Log("Combat stopped")
		}
	}

	if active && len(t.creatures) > 0 && t.spotlightIndex(t.ordered()) == -1 {
		t.ordered()[0].Spotlight = true
	}
	t.save()
}

// ToggleState flips the active flag.
func (t *Tracker) ToggleState() {
	t.SetState(!t.Active())
}

func (t *Tracker) spotlightIndex(order []*creature.Creature) int {
	for i, c := range order {
		if c.Spotlight {
			return i
		}
	}
	return -1
}

// GoToNext advances the spotlight to the next enabled creature. Wrapping
// past the end of the order increments the round and clears every
// reset-on-round condition.
func (t *Tracker) GoToNext() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.advance(1)
}

// GoToPrevious moves the spotlight back to the previous enabled creature,
// decrementing the round when it wraps past the start. It is a no-op at
// round 1 with the spotlight on the first creature.
func (t *Tracker) GoToPrevious() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.advance(-1)
}

func (t *Tracker) advance(step int) {
	order := t.ordered()
	if len(order) == 0 {
		return
	}
	current := t.spotlightIndex(order)
	if current == -1 {
		order[0].Spotlight = true
		t.save()
		return
	}
	if step < 0 && current == 0 && t.round == 1 {
		return
	}

	// Cyclic scan skipping disabled creatures; stopping back at the
	// starting index means no other enabled creature exists.
	next := current
	for {
		next = ((next+step)%len(order) + len(order)) % len(order)
		if next == current || order[next].Enabled {
			break
		}
	}

	order[current].Spotlight = false
	wrapped := (step > 0 && next < current) || (step < 0 && next > current)
	if wrapped {
		t.round += step
		for _, c := range t.creatures {
			c.ClearRoundConditions()
		}
		if t.log != nil {
			t.log.Log("###", formatRound(t.round))
		}
	}
	if t.log != nil {
		t.log.Log("#####", order[next].GetName()+"'s turn")
	}
	order[next].Spotlight = true
	t.save()
}

// NewEncounter replaces the roster. A nil state keeps only player
// creatures and resets round, name, and the active flag. A non-nil state
// rehydrates its creatures, preserving any live player creature whose id
// matches an incoming one so in-flight player edits survive a reload.
func (t *Tracker) NewEncounter(state *EncounterState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if state == nil {
		t.round = 1
		t.active = false
		t.name = ""
		kept := t.creatures[:0]
		for _, c := range t.creatures {
			if c.Player {
				kept = append(kept, c)
			}
		}
		t.creatures = kept
		if t.log != nil {
			t.log.Stop()
		}
		t.setNumbers()
		t.save()
		return
	}

	t.round = state.Round
	if t.round == 0 {
		t.round = 1
	}
	t.active = state.Active
	t.name = state.Name
	if state.Party != "" {
		t.party = state.Party
	}

	players := make(map[string]*creature.Creature)
	for _, c := range t.creatures {
		if c.Player {
			players[c.ID] = c
		}
	}

	var next []*creature.Creature
	for _, cs := range state.Creatures {
		if existing, ok := players[cs.ID]; ok && cs.Player {
			next = append(next, existing)
			continue
		}
		next = append(next, creature.FromState(cs, t.catalog))
	}
	for _, p := range players {
		found := false
		for _, c := range next {
			if c.Player && c.ID == p.ID {
				found = true
				break
			}
		}
		if !found {
			next = append(next, p)
		}
	}
	t.creatures = next
	t.setNumbers()

	if t.log != nil {
		if state.LogFile != "" {
			if err := t.log.Resume(state.LogFile); err != nil {
				t.logger.Warn("resuming combat log", zap.Error(err))
			}
		}
		if state.NewLog {
			t.log.Stop()
		}
	}
	t.save()
}

// Reset restores every creature's resources to max, re-enables everyone,
// and clears all statuses. Round and the active flag are untouched.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.creatures {
		c.DC.Reset()
		c.HP.Reset()
		c.Stress.Reset()
		c.Enabled = true
		c.ClearConditions()
	}
	if t.log != nil {
		t.log.Log("Encounter HP & Statuses reset")
	}
	t.save()
}

// Add appends creatures to the roster and renumbers duplicates.
func (t *Tracker) Add(items ...*creature.Creature) {
	if len(items) == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.creatures = append(t.creatures, items...)
	if t.log != nil {
		t.log.Log(combatlog.Join(names(items)), "added to the combat.")
	}
	t.setNumbers()
	t.save()
}

// Remove drops the given creatures from the roster, matched by id.
func (t *Tracker) Remove(items ...*creature.Creature) {
	if len(items) == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := make(map[string]bool, len(items))
	for _, c := range items {
		removed[c.ID] = true
		delete(t.pending, c)
	}
	kept := t.creatures[:0]
	for _, c := range t.creatures {
		if !removed[c.ID] {
			kept = append(kept, c)
		}
	}
	t.creatures = kept
	if t.log != nil {
		t.log.Log(combatlog.Join(names(items)), "removed from the combat.")
	}
	t.save()
}

// Replace swaps old for replacement in place, preserving roster position,
// then renumbers.
func (t *Tracker) Replace(old, replacement *creature.Creature) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, c := range t.creatures {
		if c.ID == old.ID {
			t.creatures[i] = replacement
			break
		}
	}
	delete(t.pending, old)
	t.setNumbers()
	t.save()
}

// SetNumbers reassigns disambiguation suffixes across the roster.
func (t *Tracker) SetNumbers() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setNumbers()
	t.save()
}

// setNumbers assigns number = max(sibling numbers) + 1 to every unnumbered
// creature whose name collides with another roster member. Players and
// unique names keep 0 (no suffix); already numbered creatures are stable.
func (t *Tracker) setNumbers() {
	for _, c := range t.creatures {
		if c.Player || c.Number > 0 {
			continue
		}
		shared := 0
		for _, other := range t.creatures {
			if other.Name == c.Name {
				shared++
			}
		}
		if shared <= 1 {
			continue
		}
		max := 0
		for _, other := range t.creatures {
			if other == c {
				continue
			}
			if other.NameKey() == c.NameKey() && other.Number > max {
				max = other.Number
			}
		}
		c.Number = max + 1
	}
}

// EncounterState snapshots the full tracker state for persistence.
func (t *Tracker) EncounterState() EncounterState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.encounterState()
}

func (t *Tracker) encounterState() EncounterState {
	states := make([]creature.State, 0, len(t.creatures))
	for _, c := range t.creatures {
		states = append(states, c.ToState())
	}
	logFile := ""
	if t.log != nil {
		logFile = t.log.FilePath()
	}
	return EncounterState{
		Creatures: states,
		Active:    t.active,
		Party:     t.party,
		Name:      t.name,
		Round:     t.round,
		LogFile:   logFile,
	}
}

// save signals the persistence sink that state is dirty. Called with t.mu
// held, after every mutation batch.
func (t *Tracker) save() {
	if t.sink != nil {
		t.sink.SaveState(t.encounterState())
	}
}

// Summary is the difficulty report for the current roster.
type Summary struct {
	Difficulty rpgsystem.DifficultyLevel
	Thresholds []rpgsystem.DifficultyThreshold
	Labels     []string
}

// Difficulty filters out disabled, friendly, and player creatures, groups
// the rest by full-stat equivalence, and delegates to the configured
// difficulty strategy with the referenced party.
func (t *Tracker) Difficulty() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	var counted []rpgsystem.CountedCreature
	for _, c := range t.creatures {
		if !c.Enabled || c.Friendly || c.Player {
			continue
		}
		stats := c.GetStats()
		merged := false
		for i := range counted {
			if counted[i].Creature.MatchesStats(stats) {
				counted[i].Count++
				merged = true
				break
			}
		}
		if !merged {
			counted = append(counted, rpgsystem.CountedCreature{Creature: c, Count: 1})
		}
	}

	var pty party.Party
	if t.parties != nil && t.party != "" {
		pty, _ = t.parties.PartyByName(t.party)
	}
	system := t.systems.Get(t.settings.RPGSystem)
	return Summary{
		Difficulty: system.EncounterDifficulty(counted, pty),
		Thresholds: system.DifficultyThresholds(pty),
		Labels:     system.Difficulties(),
	}
}

func names(items []*creature.Creature) []string {
	out := make([]string, 0, len(items))
	for _, c := range items {
		out = append(out, c.Name)
	}
	return out
}

func formatRound(round int) string {
	return "Round " + strconv.Itoa(round)
}
