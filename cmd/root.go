/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// Global flags
var (
	outputFlag   string
	logLevelFlag string
	logFileFlag  string
	dataDirFlag  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "crates",
	Short: "Dig through the Discogs database and marketplace",
	Long: `crates is a command line client for Discogs.

It looks up artists, releases, masters and labels, searches the database,
and manages your collection, wantlist and marketplace inventory.

Requests are throttled to stay inside the Discogs rate limit and are retried
with exponential backoff when the server answers 429. Every request's rate
limit state is recorded locally; see 'crates ratelimit'.

Run 'crates auth' first to store a personal access token or complete the
OAuth flow.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "Log file path (default: stderr)")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Data directory for the request log (default: ~/.local/share/crates)")
}
