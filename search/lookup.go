package search

import (
	"context"

	"github.com/kbukum/heroes/hero"
)

// Lookup finds the heroes matching a non-blank query. Implementations
// should return promptly once ctx is canceled.
type Lookup interface {
	SearchHeroes(ctx context.Context, query string) ([]hero.Hero, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, query string) ([]hero.Hero, error)

// SearchHeroes calls f.
func (f LookupFunc) SearchHeroes(ctx context.Context, query string) ([]hero.Hero, error) {
	return f(ctx, query)
}

var _ Lookup = (*hero.Service)(nil)
