package tracker

import (
	"math"
	"strconv"
	"strings"

	"github.com/hearthrpg/tracker/internal/game/combatlog"
	"github.com/hearthrpg/tracker/internal/game/condition"
	"github.com/hearthrpg/tracker/internal/game/creature"
)

// Change is one creature mutation. Nil fields are absent; the pipeline
// applies present fields in a fixed order.
type Change struct {
	Name         *string
	Stress       *int
	Damage       *int
	DC           *int
	DCDelta      *int
	DCReset      bool
	Marker       *string
	AddStatus    []condition.Condition
	RemoveStatus []condition.Condition
	Hidden       *bool
	Enabled      *bool
}

// CreatureUpdate pairs a roster creature with its change.
type CreatureUpdate struct {
	Creature *creature.Creature
	Change   Change
}

// UpdateModifiers scale a batched update per creature: Saved and Resist
// each halve the effect (Saved also suppresses status application),
// Multiplier scales it further (0 means 1).
type UpdateModifiers struct {
	Saved      bool
	Resist     bool
	Multiplier float64
}

// UpdateCreatures applies each change through the mutation pipeline. A
// creature not yet on the roster is appended. One snapshot is emitted for
// the whole batch.
func (t *Tracker) UpdateCreatures(updates ...CreatureUpdate) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, u := range updates {
		t.applyChange(u.Creature, u.Change)
		found := false
		for _, c := range t.creatures {
			if c == u.Creature {
				found = true
				break
			}
		}
		if !found {
			t.creatures = append(t.creatures, u.Creature)
		}
	}
	t.save()
}

// applyChange is the mutation pipeline. Field order is fixed: rename,
// stress overflow, tiered damage, overflow clamp, zero clamp, auto
// statuses, dc, marker, status adds, status removes, hidden, enabled.
func (t *Tracker) applyChange(c *creature.Creature, change Change) {
	if change.Name != nil {
		c.Name = *change.Name
		c.Number = 0
	}
	if change.Stress != nil {
		delta := *change.Stress
		// A stress loss past zero bleeds the deficit into HP 1:1.
		if c.Stress.Current+delta < 0 {
			deficit := c.Stress.Current + delta
			delta = -c.Stress.Current
			c.HP.Current += deficit
		}
		c.Stress.Current += delta
	}
	if change.Damage != nil {
		d := *change.Damage
		// Incoming damage is marked in major-threshold units; the
		// severity tier is the whole-point loss.
		if d < 0 {
			d = -c.Thresholds.Compare(-d, t.settings.MassiveDamage)
		}
		c.HP.Current += d
		if t.settings.HPOverflow == OverflowIgnore && c.HP.Current > c.HP.Max {
			c.HP.Current = c.HP.Max
		}
	}
	if t.settings.Clamp {
		if c.HP.Current < 0 {
			c.HP.Current = 0
		}
		if c.Stress.Current < 0 {
			c.Stress.Current = 0
		}
	}
	if t.settings.AutoStatus {
		if c.Stress.Current <= 0 {
			if cond, ok := t.catalog.GetByID(t.settings.VulnerableID); ok {
				c.AddCondition(cond)
			}
		}
		if c.HP.Current <= 0 {
			if cond, ok := t.catalog.GetByID(t.settings.UnconsciousID); ok {
				c.AddCondition(cond)
			}
		}
	}
	switch {
	case change.DCReset:
		c.DC.Reset()
	case change.DCDelta != nil:
		c.DC.Current += *change.DCDelta
	case change.DC != nil:
		c.DC.Current = *change.DC
	}
	if change.Marker != nil {
		c.Marker = *change.Marker
	}
	for _, status := range change.AddStatus {
		c.AddCondition(status)
	}
	for _, status := range change.RemoveStatus {
		c.RemoveCondition(status)
	}
	if change.Hidden != nil {
		c.Hidden = *change.Hidden
		if t.log != nil {
			if c.Hidden {
				t.log.Log(c.GetName() + " hidden")
			} else {
				t.log.Log(c.GetName() + " revealed")
			}
		}
	}
	if change.Enabled != nil {
		c.Enabled = *change.Enabled
		if t.log != nil {
			if c.Enabled {
				t.log.Log(c.GetName() + " enabled")
			} else {
				t.log.Log(c.GetName() + " disabled")
			}
		}
	}
}

// SetUpdate toggles a creature in the pending update buffer. A second call
// for the same creature removes it.
func (t *Tracker) SetUpdate(c *creature.Creature, mods UpdateModifiers) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.pending[c]; ok {
		delete(t.pending, c)
		for i, p := range t.pendOrder {
			if p == c {
				t.pendOrder = append(t.pendOrder[:i], t.pendOrder[i+1:]...)
				break
			}
		}
		return
	}
	t.pending[c] = mods
	t.pendOrder = append(t.pendOrder, c)
}

// Pending returns the buffered creatures in selection order.
func (t *Tracker) Pending() []*creature.Creature {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*creature.Creature(nil), t.pendOrder...)
}

// ClearUpdate empties the pending update buffer.
func (t *Tracker) ClearUpdate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearPending()
}

func (t *Tracker) clearPending() {
	t.pending = make(map[*creature.Creature]UpdateModifiers)
	t.pendOrder = nil
}

// DoUpdate applies damage, dc, and stress strings plus status changes to
// every buffered creature, logs one message per creature, and clears the
// buffer. Unparseable numeric strings mean "field absent", never an error.
//
// The damage string is a signed delta: positive harms, negative heals. Its
// magnitude is scaled by the creature's modifiers and floored at 1. The dc
// string supports "+N"/"-N" relative adjustment, "r" for reset, and an
// absolute value; a leading backslash escapes a literal value.
func (t *Tracker) DoUpdate(damage, dc, stress string, statuses, removeStatuses []condition.Condition) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var messages []combatlog.UpdateMessage
	for _, c := range t.pendOrder {
		entry, ok := t.pending[c]
		if !ok {
			continue
		}
		mod := 1.0
		if entry.Saved {
			mod *= 0.5
		}
		if entry.Resist {
			mod *= 0.5
		}
		if entry.Multiplier != 0 {
			mod *= entry.Multiplier
		}

		msgName := c.Name
		if c.Number > 0 {
			msgName += " " + strconv.Itoa(c.Number)
		}
		msg := combatlog.UpdateMessage{Name: msgName}
		change := Change{}

		if damage != "" {
			if n, err := strconv.ParseFloat(damage, 64); err == nil && n != 0 {
				sign := 1.0
				if n < 0 {
					sign = -1.0
				}
				v := int(-sign * math.Max(math.Abs(n)*mod, 1))
				change.Damage = &v
				msg.HP = v
				msg.HasHP = true
			}
		}
		if stress != "" {
			if n, err := strconv.Atoi(stress); err == nil {
				v := -n
				change.Stress = &v
			}
		}
		if dc != "" {
			display := strings.TrimPrefix(dc, `\`)
			switch {
			case strings.HasPrefix(dc, "+") || strings.HasPrefix(dc, "-"):
				if n, err := strconv.Atoi(dc); err == nil {
					change.DCDelta = &n
					msg.DC = display
					msg.DCAdd = true
				}
			case strings.HasPrefix(dc, "r"):
				change.DCReset = true
				msg.DC = display
			default:
				if n, err := strconv.Atoi(display); err == nil {
					change.DC = &n
					msg.DC = display
				}
			}
		}
		if len(statuses) > 0 {
			for _, s := range statuses {
				msg.Statuses = append(msg.Statuses, s.Name)
			}
			if entry.Saved {
				msg.Saved = true
			} else {
				change.AddStatus = statuses
			}
		}
		if len(removeStatuses) > 0 {
			change.RemoveStatus = removeStatuses
			for _, s := range removeStatuses {
				msg.RemovedStatuses = append(msg.RemovedStatuses, s.Name)
			}
		}

		t.applyChange(c, change)
		if msg.HasHP && c.HP.Current <= 0 {
			msg.Unconscious = true
		}
		messages = append(messages, msg)
	}

	if t.log != nil && len(messages) > 0 {
		t.log.LogUpdate(messages)
	}
	t.clearPending()
	t.save()
}
