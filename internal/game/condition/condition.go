// Package condition defines status conditions and the catalog they are
// resolved against when encounters are loaded.
package condition

import "github.com/google/uuid"

// Condition is one status effect that can be applied to a creature.
//
// Two conditions are the "same" status for add/dedup purposes when both
// Name and Amount match.
type Condition struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	ID          string `yaml:"id" json:"id"`
	// ResetOnRound marks the condition for automatic removal when a new
	// round begins.
	ResetOnRound   bool `yaml:"reset_on_round,omitempty" json:"resetOnRound,omitempty"`
	HasAmount      bool `yaml:"has_amount,omitempty" json:"hasAmount,omitempty"`
	StartingAmount int  `yaml:"starting_amount,omitempty" json:"startingAmount,omitempty"`
	Amount         int  `yaml:"amount,omitempty" json:"amount,omitempty"`
}

// Same reports whether c and other represent the same status for
// deduplication purposes.
func (c Condition) Same(other Condition) bool {
	return c.Name == other.Name && c.Amount == other.Amount
}

// Synthesize builds a minimal condition for a status name that has no
// catalog entry. The description is lost permanently, which is accepted:
// a reloaded unknown status keeps its name only.
func Synthesize(name string) Condition {
	return Condition{
		Name: name,
		ID:   uuid.NewString(),
	}
}
