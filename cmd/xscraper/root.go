package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"xscraper/pkg/config"
	"xscraper/pkg/logger"
)

var (
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile  string
	logLevel    string
	outputDir   string
	format      string
	maxTweets   int
	cookiesFile string

	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "xscraper",
	Short: "A resumable tweet scraper with checkpoint support",
	Long: `xscraper collects tweets matching a query into CSV or Excel files,
paginating through results until a target count or the end of available
data is reached.

Sessions survive interruption: progress is checkpointed continuously,
and a stopped or crashed run can be resumed with 'xscraper resume'
without losing or duplicating collected tweets. Authentication uses a
cookies.json file exported from a logged-in browser session.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile, map[string]interface{}{
			"cookies":    cookiesFile,
			"output":     outputDir,
			"format":     format,
			"max-tweets": maxTweets,
			"log-level":  logLevel,
		})
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		return logger.Initialize(&cfg.Logging)
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "output directory for export files")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "", "export format (csv or excel)")
	rootCmd.PersistentFlags().IntVarP(&maxTweets, "max-tweets", "n", 0, "stop after this many tweets (0 = unlimited)")
	rootCmd.PersistentFlags().StringVar(&cookiesFile, "cookies", "", "path to the session cookies JSON file")
}
