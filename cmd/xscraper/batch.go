package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"xscraper/pkg/logger"
)

var (
	batchFile  string
	batchSince string
	batchUntil string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [usernames...]",
	Short: "Collect tweets from a list of accounts",
	Long: `Collect tweets from several accounts sequentially, one export file
per account. Accounts can be given as arguments or read from a file
with one username per line (blank lines and #-comments ignored).

A failure on one account is recorded and the batch moves on; only
authentication and network failures stop the whole run, since they
would fail every remaining account too.`,
	Example: `  xscraper batch jack finkd sundarpichai

  xscraper batch --file accounts.txt --since 2024-01-01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		usernames := make([]string, 0, len(args))
		for _, arg := range args {
			if u := strings.TrimSpace(strings.TrimPrefix(arg, "@")); u != "" {
				usernames = append(usernames, u)
			}
		}

		if batchFile != "" {
			fromFile, err := readUsernamesFile(batchFile)
			if err != nil {
				return err
			}
			usernames = append(usernames, fromFile...)
		}

		logger.LogSessionStart("batch", fmt.Sprintf("%d accounts", len(usernames)))

		hooks, cleanup := newSessionHooks()
		defer cleanup()

		report, err := newOrchestrator(hooks).RunBatch(context.Background(), usernames, batchSince, batchUntil)
		if err != nil {
			return err
		}
		reason := "stopped"
		if report.Completed {
			reason = "completed"
		}
		logger.LogSessionEnd("batch", reason, report.TotalAccepted)
		printBatchReport(report)
		return nil
	},
}

func readUsernamesFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open usernames file: %w", err)
	}
	defer f.Close()

	var usernames []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		usernames = append(usernames, strings.TrimPrefix(line, "@"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read usernames file: %w", err)
	}
	return usernames, nil
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchFile, "file", "", "file with one username per line")
	batchCmd.Flags().StringVar(&batchSince, "since", "", "earliest tweet date (YYYY-MM-DD)")
	batchCmd.Flags().StringVar(&batchUntil, "until", "", "latest tweet date (YYYY-MM-DD)")
}
