// Package resilience keeps a flaky backend from stalling its callers.
//
//   - Retry repeats an operation with exponential backoff while its error
//     is transient.
//   - Breaker fails fast once a backend keeps failing, and lets a single
//     probe through after a cooldown.
//
// The backend client combines both: every attempt of a retried request
// passes through the breaker.
//
//	br := resilience.NewBreaker(resilience.DefaultBreakerConfig("heroes"))
//	heroes, err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func(ctx context.Context) ([]hero.Hero, error) {
//	    var out []hero.Hero
//	    err := br.Execute(func() error {
//	        var err error
//	        out, err = fetch(ctx)
//	        return err
//	    })
//	    return out, err
//	})
package resilience
