package creature

import "github.com/hearthrpg/tracker/internal/game/condition"

// State is the flat persisted record a Creature round-trips through. It is
// the serialization contract with the persistence collaborator.
type State struct {
	Name          string   `json:"name"`
	Display       string   `json:"display,omitempty"`
	Spotlight     bool     `json:"spotlight"`
	Major         int      `json:"major"`
	Severe        int      `json:"severe"`
	DC            int      `json:"dc"`
	CurrentDC     int      `json:"current_dc"`
	HP            int      `json:"hp"`
	MaxHP         int      `json:"max_hp"`
	Stress        int      `json:"stress"`
	MaxStress     int      `json:"max_stress"`
	Tier          int      `json:"tier"`
	Type          string   `json:"type"`
	Note          string   `json:"note"`
	Path          string   `json:"path"`
	ID            string   `json:"id"`
	Marker        string   `json:"marker"`
	Status        []string `json:"status"`
	Enabled       bool     `json:"enabled"`
	Hidden        bool     `json:"hidden"`
	Friendly      bool     `json:"friendly"`
	Player        bool     `json:"player"`
	StatblockLink string   `json:"statblock_link,omitempty"`
}

// ToState projects the creature into its persisted record.
func (c *Creature) ToState() State {
	status := make([]string, 0, len(c.status))
	for _, cond := range c.status {
		status = append(status, cond.Name)
	}
	return State{
		Name:          c.Name,
		Display:       c.Display,
		Spotlight:     c.Spotlight,
		Major:         c.Thresholds.Major,
		Severe:        c.Thresholds.Severe,
		DC:            c.DC.Max,
		CurrentDC:     c.DC.Current,
		HP:            c.HP.Current,
		MaxHP:         c.HP.Max,
		Stress:        c.Stress.Current,
		MaxStress:     c.Stress.Max,
		Tier:          c.Tier,
		Type:          c.Type,
		Note:          c.Note,
		Path:          c.Path,
		ID:            c.ID,
		Marker:        c.Marker,
		Status:        status,
		Enabled:       c.Enabled,
		Hidden:        c.Hidden,
		Friendly:      c.Friendly,
		Player:        c.Player,
		StatblockLink: c.StatblockLink,
	}
}

// FromState rehydrates a Creature from its persisted record. Status names
// are resolved against the catalog; unknown names come back as synthesized
// conditions with no description.
func FromState(state State, catalog *condition.Catalog) *Creature {
	c := FromDefinition(Definition{
		Name:          state.Name,
		Display:       state.Display,
		Atk:           0,
		Note:          state.Note,
		Path:          state.Path,
		StatblockLink: state.StatblockLink,
		Marker:        state.Marker,
		Player:        state.Player,
		Hidden:        state.Hidden,
		Friendly:      state.Friendly,
		ID:            state.ID,
	})
	c.Enabled = state.Enabled
	c.HP = NewResourceAt(state.MaxHP, state.HP)
	c.Stress = NewResourceAt(state.MaxStress, state.Stress)
	c.DC = NewResourceAt(state.DC, state.CurrentDC)
	c.Thresholds = Thresholds{Major: state.Major, Severe: state.Severe}
	c.Type = state.Type
	c.Tier = state.Tier
	c.Spotlight = state.Spotlight
	for _, name := range state.Status {
		c.AddCondition(catalog.Resolve(name))
	}
	return c
}
