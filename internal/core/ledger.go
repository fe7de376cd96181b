package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// State is the lifecycle state of a Ledger.
type State int

const (
	StateEmpty State = iota
	StatePopulated
)

func (s State) String() string {
	if s == StatePopulated {
		return "populated"
	}
	return "empty"
}

// Ledger owns the ordered monthly entries and the two party names.
//
// A Ledger is not safe for concurrent use; callers that share one must
// serialize access.
type Ledger struct {
	recipient string
	payor     string
	entries   []Entry
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// SetParties stores the recipient and payor names verbatim.
func (l *Ledger) SetParties(recipient, payor string) {
	l.recipient = recipient
	l.payor = payor
}

func (l *Ledger) Recipient() string { return l.recipient }
func (l *Ledger) Payor() string     { return l.payor }

// Generate replaces the entries with one row per calendar month from the
// month containing start through the month containing end, inclusive.
// Prior entries and payments are discarded. On error the ledger is unchanged.
func (l *Ledger) Generate(accrual decimal.Decimal, start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidDateFormat)
	}
	if civilDate(start).After(civilDate(end)) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidDateRange, start.Format(DateLayout), end.Format(DateLayout))
	}

	last := MonthOf(end)
	entries := make([]Entry, 0, monthsBetween(MonthOf(start), last))
	balance := decimal.Zero
	for m := MonthOf(start); !m.After(last); m = m.Next() {
		ending := balance.Add(accrual)
		entries = append(entries, Entry{
			Month:            m,
			BeginningBalance: balance,
			MonthlyAccrual:   accrual,
			AmountPaid:       decimal.Zero,
			EndingBalance:    ending,
		})
		balance = ending
	}

	l.entries = entries
	return nil
}

// GenerateFromStrings parses YYYY-MM-DD dates and calls Generate.
func (l *Ledger) GenerateFromStrings(accrual decimal.Decimal, start, end string) error {
	s, err := ParseDate(start)
	if err != nil {
		return fmt.Errorf("start date: %w", err)
	}
	e, err := ParseDate(end)
	if err != nil {
		return fmt.Errorf("end date: %w", err)
	}
	return l.Generate(accrual, s, e)
}

// Recalculate re-derives every beginning and ending balance from the current
// payments, in month order.
func (l *Ledger) Recalculate() {
	balance := decimal.Zero
	for i := range l.entries {
		l.entries[i].BeginningBalance = balance
		l.entries[i].EndingBalance = l.entries[i].expectedEnding()
		balance = l.entries[i].EndingBalance
	}
}

// RecordPayment sets the amount paid for one month. Balances are stale until
// Recalculate is called.
func (l *Ledger) RecordPayment(index int, amount decimal.Decimal) error {
	if index < 0 || index >= len(l.entries) {
		return fmt.Errorf("%w: %d (ledger has %d months)", ErrIndexOutOfRange, index, len(l.entries))
	}
	if amount.IsNegative() {
		return fmt.Errorf("%w: %s for %s", ErrNegativeAmount, FormatAmount(amount), l.entries[index].Month.Label())
	}
	l.entries[index].AmountPaid = amount
	return nil
}

// RecordPayments applies one payment per month and recalculates. Every amount
// is validated before any is applied.
func (l *Ledger) RecordPayments(amounts []decimal.Decimal) error {
	if len(amounts) != len(l.entries) {
		return fmt.Errorf("%w: got %d, want %d", ErrPaymentCount, len(amounts), len(l.entries))
	}
	for i, a := range amounts {
		if a.IsNegative() {
			return fmt.Errorf("%w: %s for %s", ErrNegativeAmount, FormatAmount(a), l.entries[i].Month.Label())
		}
	}
	for i, a := range amounts {
		l.entries[i].AmountPaid = a
	}
	l.Recalculate()
	return nil
}

// Totals returns the sum of payments and the last ending balance.
func (l *Ledger) Totals() Totals {
	t := Totals{TotalPaid: decimal.Zero, RemainingBalance: decimal.Zero}
	for _, e := range l.entries {
		t.TotalPaid = t.TotalPaid.Add(e.AmountPaid)
	}
	if n := len(l.entries); n > 0 {
		t.RemainingBalance = l.entries[n-1].EndingBalance
	}
	return t
}

// Entries returns a copy of the rows.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Ledger) Len() int { return len(l.entries) }

func (l *Ledger) State() State {
	if len(l.entries) == 0 {
		return StateEmpty
	}
	return StatePopulated
}

// View returns a snapshot for exporters.
func (l *Ledger) View() View {
	return View{
		Recipient: l.recipient,
		Payor:     l.payor,
		Entries:   l.Entries(),
		Totals:    l.Totals(),
	}
}

func monthsBetween(from, to Month) int {
	n := (to.Year-from.Year)*12 + int(to.Month-from.Month) + 1
	if n < 0 {
		return 0
	}
	return n
}
