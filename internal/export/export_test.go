package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monthledger/internal/core"
)

func sampleView(t *testing.T, start, end string) core.View {
	t.Helper()
	l := core.NewLedger()
	l.SetParties("Jane Landlord", "José Tenant")
	require.NoError(t, l.GenerateFromStrings(decimal.NewFromInt(1000), start, end))
	require.NoError(t, l.RecordPayment(0, decimal.NewFromInt(500)))
	l.Recalculate()
	return l.View()
}

func TestForFormat(t *testing.T) {
	for _, name := range []string{"pdf", "CSV", " text "} {
		e, err := ForFormat(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, e.ContentType())
	}

	_, err := ForFormat("docx")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Equal(t, []string{"csv", "pdf", "text"}, Formats())
}

func TestFilename(t *testing.T) {
	e, err := ForFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, "ledger_report.pdf", Filename("ledger_report", e))
}

func TestEmptyLedgerRejected(t *testing.T) {
	empty := core.NewLedger().View()
	var buf bytes.Buffer

	assert.ErrorIs(t, NewPDFExporter(nil).Export(&buf, empty), ErrEmptyLedger)
	assert.ErrorIs(t, CSVExporter{}.Export(&buf, empty), ErrEmptyLedger)
	assert.Zero(t, buf.Len())

	require.NoError(t, TextExporter{}.Export(&buf, empty))
	assert.Equal(t, "No entries in the ledger.\n", buf.String())
}

func TestPDFExporter(t *testing.T) {
	fixed := func() time.Time { return time.Date(2024, 4, 1, 9, 30, 0, 0, time.UTC) }
	e := NewPDFExporter(fixed)

	var buf bytes.Buffer
	require.NoError(t, e.Export(&buf, sampleView(t, "2024-01-01", "2024-03-31")))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Equal(t, "application/pdf", e.ContentType())
}

func TestPDFExporterSpansPages(t *testing.T) {
	e := NewPDFExporter(nil)

	var short, long bytes.Buffer
	require.NoError(t, e.Export(&short, sampleView(t, "2024-01-01", "2024-02-01")))
	require.NoError(t, e.Export(&long, sampleView(t, "2000-01-01", "2019-12-31")))
	assert.Greater(t, long.Len(), short.Len())
	assert.GreaterOrEqual(t, bytes.Count(long.Bytes(), []byte("/Type /Page\n")), 2)
}

func TestCSVExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSVExporter{}.Export(&buf, sampleView(t, "2024-01-01", "2024-03-31")))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, columns, records[0])
	assert.Equal(t, []string{"January 2024", "0.00", "1000.00", "500.00", "500.00"}, records[1])
	assert.Equal(t, []string{"March 2024", "1500.00", "1000.00", "0.00", "2500.00"}, records[3])
	assert.Equal(t, []string{"Total", "", "", "500.00", "2500.00"}, records[4])
}

func TestTextExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TextExporter{}.Export(&buf, sampleView(t, "2024-01-01", "2024-03-31")))
	out := buf.String()

	for _, want := range []string{
		"Recipient Name: Jane Landlord",
		"Payor Name: José Tenant",
		"Beginning Balance",
		"February 2024",
		"2500.00",
		"Summary:",
		"Total Amount Paid: 500.00",
		"Remaining Balance: 2500.00",
	} {
		assert.Contains(t, out, want)
	}
	assert.True(t, strings.HasSuffix(out, "\n"))
}
