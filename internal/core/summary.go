package core

import "github.com/shopspring/decimal"

// Totals summarizes a ledger.
type Totals struct {
	TotalPaid        decimal.Decimal
	RemainingBalance decimal.Decimal
}

// View is a read-only snapshot of a ledger for exporters and templates.
type View struct {
	Recipient string
	Payor     string
	Entries   []Entry
	Totals    Totals
}

// IsEmpty reports whether the snapshot has no rows.
func (v View) IsEmpty() bool {
	return len(v.Entries) == 0
}
