package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/heroes/client"
	"github.com/kbukum/heroes/hero"
	"github.com/kbukum/heroes/logger"
	"github.com/kbukum/heroes/messages"
	"github.com/kbukum/heroes/search"
	"github.com/kbukum/heroes/tui"
)

var (
	backendURL  string
	localHeroes bool
	logFile     string
)

// searchCmd opens the interactive search view
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search heroes interactively",
	Long: `Opens a terminal search box. Results follow what you type: a lookup is
sent once typing pauses, and an answer for an outdated query is never shown.

Logs are discarded unless --log-file is set, since the view owns the terminal.`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	for _, cmd := range []*cobra.Command{searchCmd, queryCmd, watchCmd} {
		cmd.Flags().StringVarP(&backendURL, "backend", "b", "", "Backend base URL (overrides client.base_url)")
	}
	for _, cmd := range []*cobra.Command{searchCmd, queryCmd} {
		cmd.Flags().BoolVar(&localHeroes, "local", false, "Search the built-in hero list instead of a backend")
	}
	searchCmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file")
}

func runSearch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cfg.Logging.Output = "discard"
	if logFile != "" {
		cfg.Logging.Output = logFile
	}
	log := setupLogger(cfg)

	lookup, err := newLookup(cfg, log)
	if err != nil {
		return err
	}
	return tui.Run(cmd.Context(), lookup, tui.WithPipelineOptions(
		search.WithConfig(cfg.Search),
		search.WithLogger(log),
	))
}

// setupLogger installs the configured logger as the global one.
func setupLogger(cfg *AppConfig) *logger.Logger {
	logger.Init(cfg.Logging, cfg.Name)
	return logger.GetGlobalLogger()
}

// newLookup returns the in-process hero service with --local, otherwise
// a client for the configured backend.
func newLookup(cfg *AppConfig, log *logger.Logger) (search.Lookup, error) {
	if localHeroes {
		return hero.NewService(hero.NewSeededStore(), messages.NewLog(), hero.WithLogger(log)), nil
	}
	return newHeroClient(cfg)
}

func newHeroClient(cfg *AppConfig) (*client.HeroClient, error) {
	cc := cfg.Client
	if backendURL != "" {
		cc.BaseURL = backendURL
	}
	return client.NewHeroClient(cc)
}
