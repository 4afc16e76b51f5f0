package discount

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/tariff-core/internal/model"
)

func TestWithRetry_RetriesSerializationFailure(t *testing.T) {
	calls := 0
	delays := []time.Duration{time.Millisecond, time.Millisecond}

	err := withRetry(context.Background(), delays, func() error {
		calls++
		if calls < 3 {
			return &pgconn.PgError{Code: pgerrcode.SerializationFailure}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("withRetry error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestWithRetry_GivesUpAfterDelays(t *testing.T) {
	calls := 0
	delays := []time.Duration{time.Millisecond}

	err := withRetry(context.Background(), delays, func() error {
		calls++
		return errors.New("dial tcp: connection refused")
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestWithRetry_DoesNotRetryPermanentErrors(t *testing.T) {
	calls := 0

	err := withRetry(context.Background(), []time.Duration{time.Millisecond}, func() error {
		calls++
		return &pgconn.PgError{Code: pgerrcode.CheckViolation}
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestWithRetry_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := withRetry(ctx, []time.Duration{time.Hour}, func() error {
		return errors.New("broken pipe")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

const (
	selectDiscountSQL  = `SELECT rate::text FROM discounts WHERE plan = $1`
	upsertDiscountSQL  = `INSERT INTO discounts (plan, rate) VALUES ($1, $2::numeric)`
	selectDiscountsSQL = `SELECT plan, rate::text FROM discounts ORDER BY plan`
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	s := newPostgresStore(mock)
	s.delays = []time.Duration{time.Millisecond}
	return s, mock
}

func TestPostgresStore_GetDiscount(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectDiscountSQL)).
		WithArgs("pro").
		WillReturnRows(pgxmock.NewRows([]string{"rate"}).AddRow("0.1000"))

	rate, err := s.GetDiscount(context.Background(), "pro")
	require.NoError(t, err)
	assert.Equal(t, "0.1", rate.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetDiscount_NoRowsIsZero(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectDiscountSQL)).
		WithArgs("basic").
		WillReturnError(pgx.ErrNoRows)

	rate, err := s.GetDiscount(context.Background(), "basic")
	require.NoError(t, err)
	assert.True(t, rate.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetDiscount_BadStoredValue(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "not a number", raw: "ten percent"},
		{name: "out of range", raw: "1.5", wantErr: ErrBadSourceRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t)

			mock.ExpectQuery(regexp.QuoteMeta(selectDiscountSQL)).
				WithArgs("pro").
				WillReturnRows(pgxmock.NewRows([]string{"rate"}).AddRow(tt.raw))

			_, err := s.GetDiscount(context.Background(), "pro")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestPostgresStore_GetDiscount_RetriesDeadlock(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectDiscountSQL)).
		WithArgs("pro").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.DeadlockDetected})
	mock.ExpectQuery(regexp.QuoteMeta(selectDiscountSQL)).
		WithArgs("pro").
		WillReturnRows(pgxmock.NewRows([]string{"rate"}).AddRow("0.2"))

	rate, err := s.GetDiscount(context.Background(), "pro")
	require.NoError(t, err)
	assert.Equal(t, "0.2", rate.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetDiscount(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(upsertDiscountSQL)).
		WithArgs("pro", "0.15").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SetDiscount(context.Background(), "pro", decimal.RequireFromString("0.15"))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetDiscount_RejectedBeforeQuery(t *testing.T) {
	s, mock := newMockStore(t)

	for _, raw := range []string{"1", "-0.1", "0.12345"} {
		err := s.SetDiscount(context.Background(), "pro", decimal.RequireFromString(raw))
		assert.ErrorIs(t, err, ErrRateOutOfRange, "rate=%s", raw)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetDiscount_MapsConstraintErrors(t *testing.T) {
	for _, code := range []string{pgerrcode.CheckViolation, pgerrcode.NumericValueOutOfRange} {
		t.Run(code, func(t *testing.T) {
			s, mock := newMockStore(t)

			mock.ExpectExec(regexp.QuoteMeta(upsertDiscountSQL)).
				WithArgs("pro", "0.5").
				WillReturnError(&pgconn.PgError{Code: code})

			err := s.SetDiscount(context.Background(), "pro", decimal.RequireFromString("0.5"))
			assert.ErrorIs(t, err, ErrRateOutOfRange)
			assert.ErrorIs(t, err, model.ErrInvalidArgument)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresStore_SetDiscount_OtherErrorsWrapped(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(upsertDiscountSQL)).
		WithArgs("pro", "0.5").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UndefinedTable})

	err := s.SetDiscount(context.Background(), "pro", decimal.RequireFromString("0.5"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrInvalidArgument)

	var pgErr *pgconn.PgError
	assert.True(t, errors.As(err, &pgErr))
}

func TestPostgresStore_ListDiscounts(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectDiscountsSQL)).
		WillReturnRows(pgxmock.NewRows([]string{"plan", "rate"}).
			AddRow("basic", "0.0000").
			AddRow("pro", "0.1000"))

	list, err := s.ListDiscounts(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, model.PlanBasic, list[0].Plan)
	assert.True(t, list[0].Rate.IsZero())
	assert.Equal(t, model.PlanPro, list[1].Plan)
	assert.Equal(t, "0.1", list[1].Rate.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListDiscounts_QueryError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectDiscountsSQL)).
		WillReturnError(errors.New("relation does not exist"))

	_, err := s.ListDiscounts(context.Background())
	assert.Error(t, err)
}
