package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the only accepted textual date form.
const DateLayout = "2006-01-02"

type (
	// Month identifies a calendar month. The zero value is not a valid month.
	Month struct {
		Year  int
		Month time.Month
	}

	// Entry is one month's ledger row.
	Entry struct {
		Month            Month
		BeginningBalance decimal.Decimal
		MonthlyAccrual   decimal.Decimal
		AmountPaid       decimal.Decimal
		EndingBalance    decimal.Decimal
	}
)

var (
	ErrInvalidDateFormat = errors.New("invalid date format, use YYYY-MM-DD")
	ErrInvalidDateRange  = errors.New("start date cannot be after end date")
	ErrNegativeAmount    = errors.New("amount paid cannot be negative")
	ErrIndexOutOfRange   = errors.New("month index out of range")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrPaymentCount      = errors.New("payment count does not match ledger months")
)

// MonthOf returns the calendar month containing t, in t's location.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// NewMonth creates a Month, normalizing out-of-range months (13 -> January next year).
func NewMonth(year int, month time.Month) Month {
	return MonthOf(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
}

// FirstDay returns midnight UTC on the first day of the month.
func (m Month) FirstDay() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	return NewMonth(m.Year, m.Month+1)
}

// Before reports whether m is strictly earlier than o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// After reports whether m is strictly later than o.
func (m Month) After(o Month) bool {
	return o.Before(m)
}

// IsZero reports whether m is the zero Month.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// String returns the YYYY-MM identifier.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Label returns the display form, e.g. "March 2024".
func (m Month) Label() string {
	return m.FirstDay().Format("January 2006")
}

// ParseDate parses a YYYY-MM-DD string as a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	return t, nil
}

// civilDate strips time of day so that dates compare by calendar day only.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// expectedEnding applies the balance formula for one row.
func (e Entry) expectedEnding() decimal.Decimal {
	return e.BeginningBalance.Add(e.MonthlyAccrual).Sub(e.AmountPaid)
}
