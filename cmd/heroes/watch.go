package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/heroes/search"
	"github.com/kbukum/heroes/validation"
)

// watchCmd follows a remote search session
var watchCmd = &cobra.Command{
	Use:   "watch [session]",
	Short: "Print the results of a remote search session",
	Long: `Attaches to a search session on the backend and prints each result as
the server pushes it. Queries are submitted to the session elsewhere, for
example with POST /api/search/:session.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	session := args[0]
	if err := validation.SessionID(session); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Logging.Output = "stderr"
	setupLogger(cfg)

	hc, err := newHeroClient(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	stream, err := hc.StreamResults(ctx, session)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	return search.RunIter(ctx, stream, func(_ context.Context, r search.Result) error {
		return printResult(out, r)
	})
}
