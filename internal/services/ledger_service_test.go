package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monthledger/internal/cache"
	"monthledger/internal/core"
)

func newTestService() *LedgerService {
	return NewLedgerService(cache.NewLRUCache[*Session](10, time.Hour), nil)
}

func validInput() GenerateInput {
	return GenerateInput{
		Recipient: "Alice",
		Payor:     "Bob",
		Accrual:   "1000",
		StartDate: "2024-01-01",
		EndDate:   "2024-03-31",
	}
}

func TestLedgerService_OpenReusesLiveSession(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	id := svc.Open(ctx, "")
	require.NotEmpty(t, id)
	assert.Equal(t, id, svc.Open(ctx, id))
	assert.NotEqual(t, id, svc.Open(ctx, "unknown"))
}

func TestLedgerService_GenerateAndPay(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	id := svc.Open(ctx, "")

	view, err := svc.Generate(ctx, id, validInput())
	require.NoError(t, err)
	require.Len(t, view.Entries, 3)
	assert.Equal(t, "Alice", view.Recipient)
	assert.Equal(t, "Bob", view.Payor)
	assert.Equal(t, "3000.00", core.FormatAmount(view.Totals.RemainingBalance))

	view, err = svc.RecordPayments(ctx, id, []string{"500", "1000,00", ""})
	require.NoError(t, err)
	assert.Equal(t, "1500.00", core.FormatAmount(view.Totals.TotalPaid))
	assert.Equal(t, "1500.00", core.FormatAmount(view.Totals.RemainingBalance))

	again, err := svc.View(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, view.Totals, again.Totals)
}

func TestLedgerService_GenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *GenerateInput)
		wantErr error
	}{
		{"bad accrual", func(in *GenerateInput) { in.Accrual = "lots" }, core.ErrInvalidAmount},
		{"bad date", func(in *GenerateInput) { in.StartDate = "not-a-date" }, core.ErrInvalidDateFormat},
		{"inverted range", func(in *GenerateInput) { in.StartDate, in.EndDate = "2024-05-01", "2024-01-01" }, core.ErrInvalidDateRange},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService()
			ctx := context.Background()
			id := svc.Open(ctx, "")

			in := validInput()
			tc.mutate(&in)
			_, err := svc.Generate(ctx, id, in)
			require.ErrorIs(t, err, tc.wantErr)

			view, err := svc.View(ctx, id)
			require.NoError(t, err)
			assert.True(t, view.IsEmpty())
		})
	}
}

func TestLedgerService_AccrualFieldError(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	id := svc.Open(ctx, "")

	in := validInput()
	in.Accrual = ""
	_, err := svc.Generate(ctx, id, in)

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "accrual", fe.Field)
}

func TestLedgerService_PaymentErrors(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	id := svc.Open(ctx, "")

	_, err := svc.RecordPayments(ctx, id, []string{"1"})
	require.ErrorIs(t, err, ErrNotGenerated)

	_, err = svc.Generate(ctx, id, validInput())
	require.NoError(t, err)

	_, err = svc.RecordPayments(ctx, id, []string{"1", "2"})
	assert.ErrorIs(t, err, core.ErrPaymentCount)

	_, err = svc.RecordPayments(ctx, id, []string{"1", "-5", "2"})
	assert.ErrorIs(t, err, core.ErrNegativeAmount)

	_, err = svc.RecordPayments(ctx, id, []string{"1", "x", "2"})
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "February 2024", fe.Field)

	view, err := svc.View(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "0.00", core.FormatAmount(view.Totals.TotalPaid), "rejected payments leave the ledger unchanged")
}

func TestLedgerService_UnknownSession(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.View(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Generate(ctx, "missing", validInput())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.RecordPayments(ctx, "missing", nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLedgerService_ConcurrentPaymentsOnOneSession(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	id := svc.Open(ctx, "")
	_, err := svc.Generate(ctx, id, validInput())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.RecordPayments(ctx, id, []string{"100", "100", "100"})
			_, _ = svc.View(ctx, id)
		}()
	}
	wg.Wait()

	view, err := svc.View(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "300.00", core.FormatAmount(view.Totals.TotalPaid))
	assert.Equal(t, "2700.00", core.FormatAmount(view.Totals.RemainingBalance))
}
