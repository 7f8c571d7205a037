package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/heroes/search"
)

var interval time.Duration

// queryCmd replays a keystroke sequence through the search pipeline
var queryCmd = &cobra.Command{
	Use:   "query [text...]",
	Short: "Replay typed queries through the search pipeline",
	Long: `Submits each argument as if it had been typed, waiting --interval between
them, and prints every result the pipeline emits. Queries replaced before
the debounce period elapses never reach the backend.

Example:
  heroes query m ma mag --interval 100ms --local`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().DurationVar(&interval, "interval", 0, "Pause between submitted queries")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Logging.Output = "stderr"
	log := setupLogger(cfg)

	lookup, err := newLookup(cfg, log)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	source := search.NewSource()
	results := search.New(source, lookup,
		search.WithConfig(cfg.Search),
		search.WithLogger(log),
	).Subscribe(ctx)

	go func() {
		defer source.Close()
		for i, text := range args {
			if i > 0 && interval > 0 {
				select {
				case <-time.After(interval):
				case <-ctx.Done():
					return
				}
			}
			source.Submit(text)
		}
	}()

	out := cmd.OutOrStdout()
	return search.RunIter(ctx, results, func(_ context.Context, r search.Result) error {
		return printResult(out, r)
	})
}

// printResult writes one result line: generation, query and hero names.
func printResult(w io.Writer, r search.Result) error {
	names := make([]string, len(r.Heroes))
	for i, h := range r.Heroes {
		names[i] = h.Name
	}
	list := "(none)"
	if len(names) > 0 {
		list = strings.Join(names, ", ")
	}
	_, err := fmt.Fprintf(w, "#%d %q: %s\n", r.Generation, r.Query, list)
	return err
}
