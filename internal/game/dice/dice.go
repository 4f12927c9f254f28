// Package dice provides the randomness abstraction and dice-expression
// evaluation used for encounter counts and hit-point rolls.
package dice

import (
	"fmt"
	"regexp"
)

// RollResult holds the audit trail for a single dice roll evaluation.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string // original expression string, e.g. "2d6+3"
	Dice       []int  // individual die results before modifier
	Modifier   int    // flat modifier (may be negative)
}

// Total returns the sum of all die results plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String returns a human-readable audit string, e.g. "2d6+3 → [4 5] +3 = 12".
func (r RollResult) String() string {
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

var exprPattern = regexp.MustCompile(`^\d*[dD]\d+([+-]\d+)?$`)

// IsExpression reports whether s looks like a dice expression ("2d4", "d6+1").
// It does not validate die counts or sides; use Parse for that.
func IsExpression(s string) bool {
	return exprPattern.MatchString(s)
}
