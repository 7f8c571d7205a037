// Package pipeline provides composable, pull-based stream operators.
//
// Pipelines are lazy: no work happens until values are pulled via Collect,
// Drain, or ForEach. Each stage pulls from the previous stage on demand.
// Every pull of a Pipeline creates fresh iterator state, so the same
// Pipeline value can be consumed by several independent subscribers.
//
// # Operators
//
// Synchronous (single-goroutine):
//
//   - Map: transform each value
//   - Tap: side-effect without altering the value (logging, metrics)
//   - Distinct: drop a value equal to the one forwarded just before it
//
// Time and concurrency aware:
//
//   - Debounce: emit the latest value once the input has been quiet
//   - Switch: map each value to an asynchronous computation, abandoning
//     the previous one; only the latest computation is ever yielded
//
// # Usage
//
//	queries := pipeline.From(source.Subscribe(ctx))
//	settled := pipeline.Distinct(pipeline.Debounce(queries, 300*time.Millisecond))
//	results := pipeline.Switch(settled, lookup)
//	pipeline.Drain(results, render).Run(ctx)
package pipeline
