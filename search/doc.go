// Package search turns a stream of raw keystrokes into a stream of hero
// lookup results.
//
// A Source accepts queries and fans them out to any number of subscribers.
// Each subscriber of a Pipeline gets its own operator chain:
//
//	Source → Debounce(D) → Distinct → Switch(lookup) → Result
//
// Debounce keeps only the query that was current when the input went quiet
// for D. Distinct drops a query equal to the one forwarded before it.
// Switch dispatches the lookup and cancels the previous one, so a stale
// result never reaches the sink. A failed lookup yields an empty Result
// and the stream keeps running.
//
// # Usage
//
//	src := search.NewSource()
//	p := search.New(src, heroService, search.WithDebounce(300*time.Millisecond))
//	go p.Run(ctx, func(ctx context.Context, r search.Result) error {
//		render(r.Heroes)
//		return nil
//	})
//	src.Submit("mag")
//
// Sessions keeps one Source and Pipeline per remote client and broadcasts
// each Result over the SSE hub.
package search
