package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"monthledger/internal/core"
)

// CSVExporter writes a header row, one row per month and a totals row.
type CSVExporter struct{}

func (CSVExporter) ContentType() string { return "text/csv; charset=utf-8" }
func (CSVExporter) Extension() string   { return "csv" }

func (CSVExporter) Export(w io.Writer, v core.View) error {
	if v.IsEmpty() {
		return ErrEmptyLedger
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(rows(v)); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}
