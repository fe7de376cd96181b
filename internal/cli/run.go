package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"monthledger/internal/core"
	"monthledger/internal/export"
	applog "monthledger/internal/log"
)

// Options are the command-line values for one ledger run. Empty strings mean
// "not given" and are prompted for.
type Options struct {
	Recipient   string
	Payor       string
	Accrual     string
	Start       string
	End         string
	Payments    string
	Interactive bool
	// Out is the export file base name; the format's extension is appended.
	// Empty skips the export.
	Out    string
	Format string
	Logger *applog.Logger
}

// Run builds a ledger from opts, prompting on in/out for anything missing,
// prints it and writes the export file. It returns the final view.
func Run(opts Options, in io.Reader, out io.Writer) (core.View, error) {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentCLI)
	p := NewPrompter(in, out)

	// Resolve the exporter first so a bad -format fails before any prompting.
	var exporter export.Exporter
	if opts.Out != "" {
		e, err := export.ForFormat(opts.Format)
		if err != nil {
			return core.View{}, err
		}
		exporter = e
	}

	recipient, payor := opts.Recipient, opts.Payor
	var err error
	if recipient == "" {
		if recipient, err = p.AskString("Recipient Name: "); err != nil {
			return core.View{}, err
		}
	}
	if payor == "" {
		if payor, err = p.AskString("Payor Name: "); err != nil {
			return core.View{}, err
		}
	}

	var accrual decimal.Decimal
	if opts.Accrual != "" {
		if accrual, err = core.ParseAmount(opts.Accrual); err != nil {
			return core.View{}, fmt.Errorf("accrual: %w", err)
		}
	} else if accrual, err = p.AskAmount("Monthly Accrual Amount: ", true); err != nil {
		return core.View{}, err
	}

	ledger := core.NewLedger()
	if err := generate(p, ledger, accrual, opts.Start, opts.End); err != nil {
		return core.View{}, err
	}
	ledger.SetParties(recipient, payor)
	logger.Debug("Ledger generated",
		applog.FieldOperation, applog.OpGenerate,
		applog.FieldMonths, ledger.Len(),
		applog.FieldAccrual, core.FormatAmount(accrual))

	switch {
	case opts.Payments != "":
		amounts, err := ParsePaymentList(opts.Payments)
		if err != nil {
			return core.View{}, err
		}
		if err := ledger.RecordPayments(amounts); err != nil {
			return core.View{}, err
		}
	case opts.Interactive:
		if err := p.CollectPayments(ledger); err != nil {
			return core.View{}, err
		}
	}

	view := ledger.View()
	fmt.Fprintln(out)
	if err := (export.TextExporter{}).Export(out, view); err != nil {
		return view, err
	}

	if exporter == nil {
		return view, nil
	}
	path, err := save(exporter, opts.Out, view)
	if err != nil {
		return view, err
	}
	logger.Info("Ledger saved",
		applog.FieldOperation, applog.OpExport,
		applog.FieldFormat, exporter.Extension(),
		applog.FieldFile, path,
		applog.FieldTotalPaid, core.FormatAmount(view.Totals.TotalPaid),
		applog.FieldRemaining, core.FormatAmount(view.Totals.RemainingBalance))
	fmt.Fprintf(out, "\nLedger saved to %s\n", path)
	return view, nil
}

// generate uses the flag dates when both are given; otherwise it prompts for
// the missing ones, re-asking the pair when the range is reversed.
func generate(p *Prompter, l *core.Ledger, accrual decimal.Decimal, start, end string) error {
	if start != "" && end != "" {
		return l.GenerateFromStrings(accrual, start, end)
	}
	for {
		s, err := dateOrPrompt(p, start, "Start Date (YYYY-MM-DD): ")
		if err != nil {
			return err
		}
		e, err := dateOrPrompt(p, end, "End Date (YYYY-MM-DD): ")
		if err != nil {
			return err
		}
		err = l.Generate(accrual, s, e)
		if errors.Is(err, core.ErrInvalidDateRange) {
			p.invalid(err)
			continue
		}
		return err
	}
}

func dateOrPrompt(p *Prompter, given, label string) (time.Time, error) {
	if given != "" {
		return core.ParseDate(given)
	}
	return p.AskDate(label)
}

func save(e export.Exporter, base string, v core.View) (string, error) {
	path := export.Filename(base, e)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := e.Export(f, v); err != nil {
		f.Close()
		_ = os.Remove(path)
		return "", err
	}
	return path, f.Close()
}
