// Package client talks to the heroes HTTP backend.
//
// Client handles the protocol: base URL, default headers, timeouts and
// classification of failures into *Error. HeroClient layers the hero API
// on top and implements search.Lookup, so a Pipeline can run against a
// remote backend:
//
//	c, err := client.NewHeroClient(client.Config{BaseURL: "http://localhost:8080"})
//	p := search.New(search.NewSource(), c)
//
// GETs that hit an unreachable or unavailable backend are retried with
// backoff, and a circuit breaker fails requests fast after repeated
// backend failures. Anything still failing surfaces from SearchHeroes as
// a LookupError.
package client
