// Package services provides business logic and orchestration services.
//
// The ledger service owns one core.Ledger per web session. The core ledger is
// single-threaded; the service serializes access per session and logs every
// operation.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"monthledger/internal/cache"
	"monthledger/internal/core"
	applog "monthledger/internal/log"
)

var (
	ErrSessionNotFound = errors.New("session not found or expired")
	ErrNotGenerated    = errors.New("generate the ledger first")
)

// Session is one browser's ledger.
type Session struct {
	ID string

	mu     sync.Mutex
	ledger *core.Ledger
}

func newSession() *Session {
	return &Session{ID: uuid.NewString(), ledger: core.NewLedger()}
}

// GenerateInput carries the raw form values for a generation.
type GenerateInput struct {
	Recipient string
	Payor     string
	Accrual   string
	StartDate string
	EndDate   string
}

// FieldError names the form field that failed, wrapping the core error.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Err.Error() }
func (e *FieldError) Unwrap() error { return e.Err }

// LedgerService manages session ledgers.
type LedgerService struct {
	sessions cache.Cache[*Session]
	logger   *applog.Logger
}

// NewLedgerService creates a service backed by the given session store.
func NewLedgerService(sessions cache.Cache[*Session], logger *applog.Logger) *LedgerService {
	if logger == nil {
		logger = applog.Discard()
	}
	return &LedgerService{
		sessions: sessions,
		logger:   logger.WithComponent(applog.ComponentLedger),
	}
}

// Open returns id if it names a live session, otherwise creates a new one.
func (s *LedgerService) Open(ctx context.Context, id string) string {
	if id != "" {
		if _, ok := s.sessions.Get(id); ok {
			return id
		}
	}
	sess := newSession()
	s.sessions.Set(sess.ID, sess)
	s.logger.DebugContext(ctx, "Session created",
		applog.FieldOperation, applog.OpOpen,
		applog.FieldSessionID, sess.ID,
		"active_sessions", s.sessions.Size())
	return sess.ID
}

func (s *LedgerService) session(id string) (*Session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Generate parses the form input, sets the parties and regenerates the ledger.
func (s *LedgerService) Generate(ctx context.Context, id string, in GenerateInput) (core.View, error) {
	sess, err := s.session(id)
	if err != nil {
		return core.View{}, err
	}

	accrual, err := core.ParseAmount(in.Accrual)
	if err != nil {
		return core.View{}, s.rejected(ctx, id, applog.OpGenerate, &FieldError{Field: "accrual", Err: err})
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.ledger.GenerateFromStrings(accrual, in.StartDate, in.EndDate); err != nil {
		return core.View{}, s.rejected(ctx, id, applog.OpGenerate, err)
	}
	sess.ledger.SetParties(in.Recipient, in.Payor)

	view := sess.ledger.View()
	s.logger.InfoContext(ctx, "Ledger generated", ledgerFields(id, applog.OpGenerate, view, accrual).ToSlice()...)
	return view, nil
}

// RecordPayments parses one amount per month, applies them all and
// recalculates. Blank fields count as zero.
func (s *LedgerService) RecordPayments(ctx context.Context, id string, raw []string) (core.View, error) {
	sess, err := s.session(id)
	if err != nil {
		return core.View{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.ledger.State() == core.StateEmpty {
		return core.View{}, s.rejected(ctx, id, applog.OpPayments, ErrNotGenerated)
	}

	entries := sess.ledger.Entries()
	if len(raw) != len(entries) {
		return core.View{}, s.rejected(ctx, id, applog.OpPayments,
			fmt.Errorf("%w: got %d, want %d", core.ErrPaymentCount, len(raw), len(entries)))
	}

	amounts := make([]decimal.Decimal, len(raw))
	for i, r := range raw {
		if r == "" {
			amounts[i] = decimal.Zero
			continue
		}
		a, err := core.ParseAmount(r)
		if err != nil {
			return core.View{}, s.rejected(ctx, id, applog.OpPayments,
				&FieldError{Field: entries[i].Month.Label(), Err: err})
		}
		amounts[i] = a
	}

	if err := sess.ledger.RecordPayments(amounts); err != nil {
		return core.View{}, s.rejected(ctx, id, applog.OpPayments, err)
	}

	view := sess.ledger.View()
	s.logger.InfoContext(ctx, "Payments recorded", ledgerFields(id, applog.OpPayments, view, entries[0].MonthlyAccrual).ToSlice()...)
	return view, nil
}

// View returns a snapshot of the session's ledger.
func (s *LedgerService) View(ctx context.Context, id string) (core.View, error) {
	sess, err := s.session(id)
	if err != nil {
		return core.View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.ledger.View(), nil
}

func (s *LedgerService) rejected(ctx context.Context, id, op string, err error) error {
	s.logger.WarnContext(ctx, "Ledger operation rejected",
		applog.FieldOperation, op,
		applog.FieldSessionID, id,
		applog.FieldError, err.Error())
	return err
}

func ledgerFields(id, op string, v core.View, accrual decimal.Decimal) applog.LogFields {
	first, last := "", ""
	if n := len(v.Entries); n > 0 {
		first, last = v.Entries[0].Month.String(), v.Entries[n-1].Month.String()
	}
	return applog.NewFields().
		WithSession(id).
		WithOperation(op).
		WithLedger(len(v.Entries), first, last,
			core.FormatAmount(accrual),
			core.FormatAmount(v.Totals.TotalPaid),
			core.FormatAmount(v.Totals.RemainingBalance))
}

// ActiveSessions reports how many sessions the store currently holds.
func (s *LedgerService) ActiveSessions() int {
	return s.sessions.Size()
}
