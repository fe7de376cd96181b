package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"monthledger/internal/cli"
	"monthledger/internal/export"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(os.Stderr)

	var opts cli.Options
	flag.StringVar(&opts.Recipient, "recipient", "", "recipient name")
	flag.StringVar(&opts.Payor, "payor", "", "payor name")
	flag.StringVar(&opts.Accrual, "accrual", "", "monthly accrual amount")
	flag.StringVar(&opts.Start, "start", "", "start date (YYYY-MM-DD)")
	flag.StringVar(&opts.End, "end", "", "end date (YYYY-MM-DD)")
	flag.StringVar(&opts.Payments, "payments", "", "comma-separated amount paid per month, dot decimals")
	flag.BoolVar(&opts.Interactive, "interactive", false, "prompt for the amount paid in each month")
	flag.StringVar(&opts.Out, "out", cfg.ExportFilename, "export file name without extension; empty skips the export")
	flag.StringVar(&opts.Format, "format", cfg.ExportFormat, "export format: "+strings.Join(export.Formats(), ", "))
	flag.Parse()
	opts.Logger = logger

	if _, err := cli.Run(opts, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
