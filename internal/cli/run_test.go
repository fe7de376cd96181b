package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"monthledger/internal/core"
	"monthledger/internal/export"
)

func TestRun_FlagsOnly(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	view, err := Run(Options{
		Recipient: "Alice",
		Payor:     "Bob",
		Accrual:   "1000",
		Start:     "2024-01-15",
		End:       "2024-03-10",
		Payments:  "500,0,0",
		Out:       filepath.Join(dir, "ledger_report"),
		Format:    "csv",
	}, strings.NewReader(""), &out)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(view.Entries) != 3 {
		t.Fatalf("months = %d, want 3", len(view.Entries))
	}
	if got := core.FormatAmount(view.Totals.RemainingBalance); got != "2500.00" {
		t.Errorf("remaining = %s, want 2500.00", got)
	}
	for _, want := range []string{"Recipient Name: Alice", "Total Amount Paid: 500.00", "Remaining Balance: 2500.00", "Ledger saved to"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "ledger_report.csv"))
	if err != nil {
		t.Fatalf("export file: %v", err)
	}
	if !strings.Contains(string(data), "January 2024") {
		t.Errorf("csv missing first month:\n%s", data)
	}
}

func TestRun_PromptsForMissingValues(t *testing.T) {
	var out bytes.Buffer
	input := strings.Join([]string{
		"Alice",      // recipient
		"Bob",        // payor
		"oops",       // accrual, rejected
		"100",        // accrual
		"2024-03-01", // start
		"2024-01-01", // end, reversed range
		"2024-01-01", // start again
		"2024-02-29", // end
		"50",         // January
		"",           // February
	}, "\n") + "\n"

	view, err := Run(Options{Interactive: true}, strings.NewReader(input), &out)
	if err != nil {
		t.Fatalf("Run error: %v\n%s", err, out.String())
	}
	if view.Recipient != "Alice" || view.Payor != "Bob" {
		t.Errorf("parties = %q/%q", view.Recipient, view.Payor)
	}
	if len(view.Entries) != 2 {
		t.Fatalf("months = %d, want 2", len(view.Entries))
	}
	if got := core.FormatAmount(view.Totals.RemainingBalance); got != "150.00" {
		t.Errorf("remaining = %s, want 150.00", got)
	}
	if n := strings.Count(out.String(), "Please try again."); n != 2 {
		t.Errorf("re-prompts = %d, want 2:\n%s", n, out.String())
	}
	if strings.Contains(out.String(), "Ledger saved") {
		t.Error("no export expected without -out")
	}
}

func TestRun_FlagErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want error
	}{
		{"bad format", Options{Out: "x", Format: "xls"}, export.ErrUnknownFormat},
		{"bad accrual", Options{Recipient: "a", Payor: "b", Accrual: "x"}, core.ErrInvalidAmount},
		{"reversed flags", Options{Recipient: "a", Payor: "b", Accrual: "1", Start: "2024-05-01", End: "2024-01-01"}, core.ErrInvalidDateRange},
		{"bad date flag", Options{Recipient: "a", Payor: "b", Accrual: "1", Start: "May 1", End: "2024-06-01"}, core.ErrInvalidDateFormat},
		{"payment count", Options{Recipient: "a", Payor: "b", Accrual: "1", Start: "2024-01-01", End: "2024-02-01", Payments: "1"}, core.ErrPaymentCount},
		{"negative payment", Options{Recipient: "a", Payor: "b", Accrual: "1", Start: "2024-01-01", End: "2024-01-01", Payments: "-1"}, core.ErrNegativeAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(tt.opts, strings.NewReader(""), &bytes.Buffer{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
