package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"monthledger/internal/core"
)

// ErrNoInput is returned when the input stream ends before a value is read.
var ErrNoInput = errors.New("input closed before a value was entered")

// Prompter asks questions on out and reads answers line by line from in.
// Invalid answers are reported and the question is asked again.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

func (p *Prompter) readLine(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", ErrNoInput
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func (p *Prompter) invalid(err error) {
	fmt.Fprintf(p.out, "Invalid input: %v. Please try again.\n", err)
}

// AskString reads one line; empty answers are accepted.
func (p *Prompter) AskString(label string) (string, error) {
	return p.readLine(label)
}

// AskAmount reads a decimal amount, re-asking until it parses. Negative
// amounts are rejected unless allowNegative is set.
func (p *Prompter) AskAmount(label string, allowNegative bool) (decimal.Decimal, error) {
	for {
		line, err := p.readLine(label)
		if err != nil {
			return decimal.Zero, err
		}
		amount, err := core.ParseAmount(line)
		if err == nil && !allowNegative && amount.IsNegative() {
			err = core.ErrNegativeAmount
		}
		if err != nil {
			p.invalid(err)
			continue
		}
		return amount, nil
	}
}

// AskDate reads a YYYY-MM-DD date, re-asking until it parses.
func (p *Prompter) AskDate(label string) (time.Time, error) {
	for {
		line, err := p.readLine(label)
		if err != nil {
			return time.Time{}, err
		}
		d, err := core.ParseDate(line)
		if err != nil {
			p.invalid(err)
			continue
		}
		return d, nil
	}
}

// CollectPayments asks for the amount paid in each month of the ledger and
// records it, then recalculates once. A blank answer keeps the current amount.
func (p *Prompter) CollectPayments(l *core.Ledger) error {
	for i, e := range l.Entries() {
		label := fmt.Sprintf("Enter amount paid for %s [%s]: ", e.Month.Label(), core.FormatAmount(e.AmountPaid))
		for {
			line, err := p.readLine(label)
			if err != nil {
				return err
			}
			if line == "" {
				break
			}
			amount, err := core.ParseAmount(line)
			if err == nil {
				err = l.RecordPayment(i, amount)
			}
			if err != nil {
				p.invalid(err)
				continue
			}
			break
		}
	}
	l.Recalculate()
	return nil
}

// ParsePaymentList splits a comma-separated list of amounts. Blank items
// count as zero. Because the comma separates items, decimals must use a dot.
func ParsePaymentList(s string) ([]decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	amounts := make([]decimal.Decimal, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			amounts[i] = decimal.Zero
			continue
		}
		a, err := core.ParseAmount(part)
		if err != nil {
			return nil, fmt.Errorf("payment %d: %w", i+1, err)
		}
		amounts[i] = a
	}
	return amounts, nil
}
