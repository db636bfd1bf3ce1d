// Package dice provides the randomness abstraction and roll-result types
// for the menagerie combat engine.
package dice

import "fmt"

// RollResult holds the audit trail for a single dice roll evaluation.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string // original expression string, e.g. "1d8+2"
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

// String returns a human-readable audit string in the format:
//
//	"1d8+2 → [5] +2 = 7"
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

// D rolls a single die with the given number of sides.
//
// Precondition: src must be non-nil; sides >= 2.
// Postcondition: Returns a value in [1, sides].
func D(src Source, sides int) int {
	return src.Intn(sides) + 1
}

// WithAdvantage rolls two d20 and returns the kept (higher) value along
// with the discarded one, for audit logging.
//
// Postcondition: kept >= dropped; both in [1, 20].
func WithAdvantage(src Source) (kept, dropped int) {
	a := D(src, 20)
	b := D(src, 20)
	if a >= b {
		return a, b
	}
	return b, a
}
