// Package stats derives base ability scores for avatars. Derivation is a
// pure function of the avatar's creation timestamp, so the same avatar
// always regenerates the same base scores.
package stats

import "time"

// Ability names the six ability scores.
type Ability string

const (
	Strength     Ability = "strength"
	Dexterity    Ability = "dexterity"
	Constitution Ability = "constitution"
	Intelligence Ability = "intelligence"
	Wisdom       Ability = "wisdom"
	Charisma     Ability = "charisma"

	// HitPoints is the pseudo-stat damage counters are recorded against.
	// It is not part of Abilities and is never derived.
	HitPoints Ability = "hit_points"
)

// Abilities lists the six abilities in their fixed derivation order.
// The order is load-bearing: it fixes how the seeded generator's stream
// is consumed, so reordering would change every derived stat set.
var Abilities = []Ability{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma}

const (
	// MinScore and MaxScore bound every derived ability score.
	MinScore = 8
	MaxScore = 16
)

// Stats holds the six ability scores and derived hit points.
type Stats struct {
	Strength     int
	Dexterity    int
	Constitution int
	Intelligence int
	Wisdom       int
	Charisma     int
	MaxHP        int
}

// Get returns the score for the named ability, or 0 for an unknown name.
func (s Stats) Get(a Ability) int {
	switch a {
	case Strength:
		return s.Strength
	case Dexterity:
		return s.Dexterity
	case Constitution:
		return s.Constitution
	case Intelligence:
		return s.Intelligence
	case Wisdom:
		return s.Wisdom
	case Charisma:
		return s.Charisma
	default:
		return 0
	}
}

// Modifier computes the ability modifier: floor((score - 10) / 2).
// Integer division in Go truncates toward zero, so negative differences
// need the explicit floor adjustment.
func Modifier(score int) int {
	diff := score - 10
	if diff < 0 {
		return (diff - 1) / 2
	}
	return diff / 2
}

// lcg is a 32-bit linear-congruential generator (Numerical Recipes
// constants). Not suitable for combat rolls; used only so stat
// derivation is reproducible from a creation timestamp.
type lcg struct {
	state uint32
}

func (g *lcg) roll(sides int) int {
	g.state = g.state*1664525 + 1013904223
	return int(g.state%uint32(sides)) + 1
}

func clamp(v int) int {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

// Generate derives a stable ability score set from createdAt.
//
// For each ability in Abilities order, two d20 values are drawn from an
// LCG seeded with the millisecond epoch of createdAt. The ability favored
// by the avatar's birth sign takes the higher draw, the hindered ability
// the lower, every other ability the first draw. Scores are clamped to
// [MinScore, MaxScore]. MaxHP = 10 + Modifier(Constitution).
//
// A zero createdAt falls back to time.Now(); Generate never fails.
// Postcondition: identical createdAt yields identical Stats; every
// ability is in [8, 16] and MaxHP is in [9, 13].
func Generate(createdAt time.Time) Stats {
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	sign := SignFor(createdAt)
	gen := &lcg{state: uint32(createdAt.UnixMilli())}

	var s Stats
	for _, a := range Abilities {
		first := gen.roll(20)
		second := gen.roll(20)

		var raw int
		switch a {
		case sign.Favored:
			raw = max(first, second)
		case sign.Hindered:
			raw = min(first, second)
		default:
			raw = first
		}
		score := clamp(raw)

		switch a {
		case Strength:
			s.Strength = score
		case Dexterity:
			s.Dexterity = score
		case Constitution:
			s.Constitution = score
		case Intelligence:
			s.Intelligence = score
		case Wisdom:
			s.Wisdom = score
		case Charisma:
			s.Charisma = score
		}
	}

	s.MaxHP = 10 + Modifier(s.Constitution)
	return s
}

// Validate reports whether s is a well-formed stat set: all six abilities
// in [MinScore, MaxScore] and MaxHP present. MaxHP is not range-checked.
func Validate(s Stats) bool {
	for _, a := range Abilities {
		score := s.Get(a)
		if score < MinScore || score > MaxScore {
			return false
		}
	}
	return s.MaxHP != 0
}
