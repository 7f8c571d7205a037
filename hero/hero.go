// Package hero holds the hero domain: the Hero record, an in-memory store
// seeded with the canonical roster, and the Service that the HTTP backend
// and the search pipeline call.
package hero

import "fmt"

// Hero is a single roster entry.
type Hero struct {
	ID   int    `json:"id"`
	Name string `json:"name" validate:"notblank"`
}

func (h Hero) String() string {
	return fmt.Sprintf("%d %s", h.ID, h.Name)
}

// Seed returns a fresh copy of the canonical roster.
func Seed() []Hero {
	return []Hero{
		{ID: 12, Name: "Dr. Nice"},
		{ID: 13, Name: "Bombasto"},
		{ID: 14, Name: "Celeritas"},
		{ID: 15, Name: "Magneta"},
		{ID: 16, Name: "RubberMan"},
		{ID: 17, Name: "Dynama"},
		{ID: 18, Name: "Dr. IQ"},
		{ID: 19, Name: "Magma"},
		{ID: 20, Name: "Tornado"},
	}
}

// Clone returns a copy of heroes that shares no backing array.
func Clone(heroes []Hero) []Hero {
	if heroes == nil {
		return []Hero{}
	}
	out := make([]Hero, len(heroes))
	copy(out, heroes)
	return out
}
