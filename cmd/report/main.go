package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"rug-surfer/internal/reporting"
	"rug-surfer/internal/storage"
	"rug-surfer/internal/storage/csvfile"
	pgstore "rug-surfer/internal/storage/postgres"
)

func main() {
	// Parse flags
	tradeLogPath := flag.String("trade-log", "trades.csv", "Path to the CSV trade journal")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (overrides --trade-log)")
	format := flag.String("format", "markdown", "Output format: markdown or csv")
	output := flag.String("output", "", "Output file (default stdout)")
	flag.Parse()

	ctx := context.Background()

	var tradeLog storage.TradeLogStore
	if *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to postgres: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()
		tradeLog = pgstore.NewTradeLogStore(pool)
	} else {
		journal, err := csvfile.NewTradeLog(*tradeLogPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening trade journal: %v\n", err)
			os.Exit(1)
		}
		defer journal.Close()
		tradeLog = journal
	}

	report, err := reporting.NewGenerator(tradeLog).Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	var rendered string
	switch *format {
	case "markdown":
		rendered = reporting.RenderMarkdown(report)
	case "csv":
		rendered = reporting.RenderCSV(report)
	default:
		fmt.Fprintf(os.Stderr, "Unknown format %q (want markdown or csv)\n", *format)
		os.Exit(1)
	}

	if *output == "" {
		fmt.Print(rendered)
		return
	}
	if err := os.WriteFile(*output, []byte(rendered), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Printf("Report written to %s (%d trades)\n", *output, report.TotalTrades)
}
