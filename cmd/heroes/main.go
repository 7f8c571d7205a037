// Command heroes serves the hero backend and searches it from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	envFile    string
	debounce   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "heroes",
	Short: "Tour of Heroes backend and live hero search",
	Long: `heroes runs the hero backend and searches it as you type.

Every keystroke feeds a search pipeline that waits for typing to pause,
ignores repeats of the last query and cancels lookups that a newer query
has made obsolete.

Examples:
  heroes serve
  heroes search --backend http://localhost:8080
  heroes query m ma mag --interval 100ms
  heroes watch my-session`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: ./config.yml or ./cmd/heroes/config.yml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Env file loaded before HEROES_* variables")
	rootCmd.PersistentFlags().DurationVar(&debounce, "debounce", 0, "Override search.debounce")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
