package encounter

import (
	"strconv"
	"strings"

	"github.com/hearthrpg/tracker/internal/game/dice"
)

// Amount is a creature count that is either a resolved number or a symbolic
// dice expression kept unevaluated for display (e.g. "1d4 + 2").
type Amount struct {
	numeric bool
	value   int
	expr    string
}

// NumericAmount returns a resolved numeric count.
func NumericAmount(n int) Amount {
	return Amount{numeric: true, value: n}
}

// SymbolicAmount returns an unevaluated count expression.
func SymbolicAmount(expr string) Amount {
	return Amount{expr: expr}
}

// IsNumeric reports whether the amount is a resolved number.
func (a Amount) IsNumeric() bool { return a.numeric }

// Value returns the resolved count, or 0 for symbolic amounts.
func (a Amount) Value() int {
	if a.numeric {
		return a.value
	}
	return 0
}

// String renders the count for display.
func (a Amount) String() string {
	if a.numeric {
		return strconv.Itoa(a.value)
	}
	return a.expr
}

// Add merges two counts: numeric counts sum, anything else concatenates
// symbolically so dice expressions survive unevaluated.
func (a Amount) Add(other Amount) Amount {
	if a.numeric && other.numeric {
		return NumericAmount(a.value + other.value)
	}
	return SymbolicAmount(a.String() + " + " + other.String())
}

// Resolve evaluates the count to a concrete number for roster seeding.
// Symbolic terms are rolled with roller; dice terms without a roller, and
// unparseable terms, count 1.
func (a Amount) Resolve(roller *dice.Roller) int {
	if a.numeric {
		return a.value
	}
	total := 0
	for _, part := range strings.Split(a.expr, " + ") {
		part = strings.TrimSpace(part)
		if n, err := strconv.Atoi(part); err == nil {
			total += n
			continue
		}
		if roller != nil && dice.IsExpression(part) {
			if result, err := roller.RollExpr(part); err == nil {
				total += result.Total()
				continue
			}
		}
		total++
	}
	return total
}
