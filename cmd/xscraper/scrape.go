package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"xscraper/pkg/logger"
	"xscraper/pkg/twitter"
)

var (
	// Scrape command flags
	keywords       []string
	matchAny       bool
	sinceDate      string
	untilDate      string
	includeReplies bool
	useDashboard   bool
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape <username>",
	Short: "Collect tweets from one account",
	Long: `Collect tweets from a single account into a CSV or Excel file.

The scrape can be narrowed with a date range and a keyword filter.
Progress is checkpointed continuously; press Ctrl-C at any point and
the session can be continued later with 'xscraper resume'.`,
	Example: `  # Everything a user has tweeted
  xscraper scrape jack

  # Keyword-filtered, any keyword matches
  xscraper scrape jack -k bitcoin -k "lightning network" --any

  # A bounded date range, capped at 500 tweets, as a spreadsheet
  xscraper scrape jack --since 2024-01-01 --until 2024-06-30 -n 500 -f excel`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := twitter.Query{
			FromUser:       strings.TrimSpace(args[0]),
			Keywords:       keywords,
			Match:          twitter.MatchAll,
			Since:          sinceDate,
			Until:          untilDate,
			IncludeReplies: includeReplies,
		}
		if matchAny {
			query.Match = twitter.MatchAny
		}

		logger.LogSessionStart("single", query.FromUser)

		if useDashboard {
			res, err := runScrapeDashboard(query)
			if err != nil {
				return err
			}
			logger.LogSessionEnd("single", string(res.Reason), res.Accepted)
			printResult(res)
			return nil
		}

		hooks, cleanup := newSessionHooks()
		defer cleanup()

		res, err := newOrchestrator(hooks).RunSingle(context.Background(), query)
		if err != nil {
			return err
		}
		logger.LogSessionEnd("single", string(res.Reason), res.Accepted)
		printResult(res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringArrayVarP(&keywords, "keyword", "k", nil, "keyword filter, repeatable")
	scrapeCmd.Flags().BoolVar(&matchAny, "any", false, "match any keyword instead of all")
	scrapeCmd.Flags().StringVar(&sinceDate, "since", "", "earliest tweet date (YYYY-MM-DD)")
	scrapeCmd.Flags().StringVar(&untilDate, "until", "", "latest tweet date (YYYY-MM-DD)")
	scrapeCmd.Flags().BoolVar(&includeReplies, "replies", false, "include replies")
	scrapeCmd.Flags().BoolVar(&useDashboard, "dashboard", false, "show the live collection dashboard")
}
