package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/naka-gawa/bugcount-report/internal/domain"
	"github.com/naka-gawa/bugcount-report/internal/gateway"
	"github.com/naka-gawa/bugcount-report/internal/sheet"
	"github.com/naka-gawa/bugcount-report/internal/usecase"
	"github.com/spf13/cobra"
)

const (
	defaultInputPath = "data/top-sites.csv"
	defaultExportDir = "data/export"
	inputDateLayout  = "2006/01/02"
)

func runReport(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	start := time.Now()

	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
	if verbose {
		logger.SetOutput(os.Stderr) // If verbose, log to standard error.
	}

	inputPath, _ := cmd.Flags().GetString("input")
	exportDir, _ := cmd.Flags().GetString("export-dir")
	freshSinceStr, _ := cmd.Flags().GetString("fresh-since")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	pause, _ := cmd.Flags().GetDuration("request-pause")
	retryDelay, _ := cmd.Flags().GetDuration("retry-delay")
	bugzillaURL, _ := cmd.Flags().GetString("bugzilla-url")

	token := githubToken(os.Getenv)
	if token == "" {
		fmt.Fprintln(os.Stderr, "Error: GITHUB_API_TOKEN environment variable is not set.")
		os.Exit(1)
	}
	freshSince, err := freshCutoff(freshSinceStr, start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid --fresh-since date format. Please use YYYY/MM/DD. Error: %v\n", err)
		os.Exit(1)
	}

	websites, err := sheet.LoadWebsites(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load websites: %v\n", err)
		os.Exit(1)
	}

	// Inject dependencies and run the main business logic.
	// Both gateways share one limiter so requests stay spaced at any concurrency.
	pacing := gateway.NewPacing(pause, retryDelay)
	githubGateway, err := gateway.NewGitHubGateway(token, pacing, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
		os.Exit(1)
	}
	bugzillaGateway := gateway.NewBugzillaGateway(bugzillaURL, pacing, logger)
	progress := log.New(os.Stderr, "", 0) // Progress is always shown.
	reporter := usecase.NewReporter(bugzillaGateway, githubGateway, freshSince, concurrency, progress, logger)

	rows, err := reporter.BuildRows(ctx, websites)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build report: %v\n", err)
		os.Exit(1)
	}

	exportPath := sheet.ExportPath(exportDir, start)
	if err := sheet.WriteReport(exportPath, domain.Header, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write report: %v\n", err)
		os.Exit(1)
	}

	for _, s := range usecase.Summarize(domain.Header, rows) {
		logger.Printf("%s: total %.0f, mean %.2f, median %.1f, max %.0f", s.Column, s.Total, s.Mean, s.Median, s.Max)
	}
	// Print the report location to standard output.
	fmt.Println(exportPath)
}

// githubToken prefers GITHUB_API_TOKEN and falls back to GITHUB_TOKEN.
func githubToken(getenv func(string) string) string {
	if token := getenv("GITHUB_API_TOKEN"); token != "" {
		return token
	}
	return getenv("GITHUB_TOKEN")
}

// freshCutoff parses a YYYY/MM/DD date. An empty string means one year before now.
func freshCutoff(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now.AddDate(-1, 0, 0), nil
	}
	return time.Parse(inputDateLayout, s)
}

func init() {
	rootCmd.Flags().String("input", defaultInputPath, "CSV file whose first column lists the websites")
	rootCmd.Flags().String("export-dir", defaultExportDir, "Directory the timestamped report is written to")
	rootCmd.Flags().String("fresh-since", "", "Bugs created after this date count as fresh (YYYY/MM/DD, default one year ago)")
	rootCmd.Flags().Int("concurrency", 1, "Number of websites processed at once")
	rootCmd.Flags().Duration("request-pause", gateway.DefaultRequestPause, "Minimum spacing between API requests")
	rootCmd.Flags().Duration("retry-delay", gateway.DefaultRetryDelay, "Delay before retrying a failed API request")
	rootCmd.Flags().String("bugzilla-url", gateway.DefaultBugzillaURL, "Base URL of the Bugzilla instance")
}
