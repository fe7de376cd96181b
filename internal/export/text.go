package export

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"monthledger/internal/core"
)

var (
	textHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1).Align(lipgloss.Center)
	textCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	textAmountStyle = textCellStyle.Align(lipgloss.Right)
	textTotalStyle  = textAmountStyle.Bold(true)
)

// TextExporter renders the ledger as a bordered console table with a summary.
type TextExporter struct{}

func (TextExporter) ContentType() string { return "text/plain; charset=utf-8" }
func (TextExporter) Extension() string   { return "txt" }

// Export writes the table. An empty ledger writes a notice instead of
// failing, since the console view is also used before generation.
func (TextExporter) Export(w io.Writer, v core.View) error {
	if v.IsEmpty() {
		_, err := fmt.Fprintln(w, "No entries in the ledger.")
		return err
	}

	body := rows(v)
	totalRow := len(body) - 1
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(columns...).
		Rows(body...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return textHeaderStyle
			case row == totalRow && col > 0:
				return textTotalStyle
			case col == 0:
				return textCellStyle
			default:
				return textAmountStyle
			}
		})

	if v.Recipient != "" || v.Payor != "" {
		if _, err := fmt.Fprintf(w, "Recipient Name: %s\nPayor Name: %s\n\n", v.Recipient, v.Payor); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, t.String()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nSummary:\nTotal Amount Paid: %s\nRemaining Balance: %s\n",
		core.FormatAmount(v.Totals.TotalPaid),
		core.FormatAmount(v.Totals.RemainingBalance))
	return err
}
