package stats

import "time"

// Sign is a birth sign in the twelve-sign totem calendar. Each sign
// favors one ability and hinders another during stat derivation.
type Sign struct {
	Name     string
	Favored  Ability
	Hindered Ability
}

// signs is indexed by time.Month - 1. Favored/hindered pairings walk the
// six abilities twice so every ability is favored and hindered exactly
// twice across the calendar.
var signs = [12]Sign{
	{Name: "Boar", Favored: Strength, Hindered: Intelligence},
	{Name: "Fox", Favored: Dexterity, Hindered: Strength},
	{Name: "Bear", Favored: Constitution, Hindered: Dexterity},
	{Name: "Owl", Favored: Intelligence, Hindered: Charisma},
	{Name: "Stag", Favored: Wisdom, Hindered: Constitution},
	{Name: "Peacock", Favored: Charisma, Hindered: Wisdom},
	{Name: "Ox", Favored: Strength, Hindered: Charisma},
	{Name: "Serpent", Favored: Dexterity, Hindered: Wisdom},
	{Name: "Tortoise", Favored: Constitution, Hindered: Strength},
	{Name: "Raven", Favored: Intelligence, Hindered: Constitution},
	{Name: "Wolf", Favored: Wisdom, Hindered: Dexterity},
	{Name: "Lion", Favored: Charisma, Hindered: Intelligence},
}

// SignFor returns the birth sign for the given creation time.
func SignFor(t time.Time) Sign {
	return signs[int(t.Month())-1]
}
