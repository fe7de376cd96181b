// Package export renders a ledger view as a document.
//
// Each format is an Exporter strategy; ForFormat looks one up by name so
// presentation code never switches on format strings itself.
package export

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"monthledger/internal/core"
)

var (
	ErrEmptyLedger   = errors.New("no entries in the ledger to save")
	ErrUnknownFormat = errors.New("unknown export format")
)

// Column headers shared by every tabular format.
var columns = []string{"Month", "Beginning Balance", "Monthly Accrual", "Amount Paid", "Ending Balance"}

const (
	reportTitle = "Monthly Ledger"
	totalLabel  = "Total"
)

// Exporter writes a ledger view in one document format.
type Exporter interface {
	Export(w io.Writer, v core.View) error
	// ContentType is the MIME type of the output.
	ContentType() string
	// Extension is the file extension without the dot.
	Extension() string
}

var exporters = map[string]func() Exporter{
	"pdf":  func() Exporter { return NewPDFExporter(nil) },
	"csv":  func() Exporter { return CSVExporter{} },
	"text": func() Exporter { return TextExporter{} },
}

// ForFormat returns the exporter registered under name (case-insensitive).
func ForFormat(name string) (Exporter, error) {
	factory, ok := exporters[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownFormat, name, strings.Join(Formats(), ", "))
	}
	return factory(), nil
}

// Register adds or replaces a format.
func Register(name string, factory func() Exporter) {
	exporters[strings.ToLower(name)] = factory
}

// Formats lists the registered format names, sorted.
func Formats() []string {
	names := make([]string, 0, len(exporters))
	for n := range exporters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Filename joins a base name and the exporter's extension.
func Filename(base string, e Exporter) string {
	return base + "." + e.Extension()
}

// rows flattens the view into display strings, totals row last.
func rows(v core.View) [][]string {
	out := make([][]string, 0, len(v.Entries)+1)
	for _, e := range v.Entries {
		out = append(out, []string{
			e.Month.Label(),
			core.FormatAmount(e.BeginningBalance),
			core.FormatAmount(e.MonthlyAccrual),
			core.FormatAmount(e.AmountPaid),
			core.FormatAmount(e.EndingBalance),
		})
	}
	out = append(out, []string{
		totalLabel, "", "",
		core.FormatAmount(v.Totals.TotalPaid),
		core.FormatAmount(v.Totals.RemainingBalance),
	})
	return out
}
