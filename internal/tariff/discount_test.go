package tariff

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDiscounts struct {
	rate  decimal.Decimal
	err   error
	calls []string
}

func (f *fakeDiscounts) GetDiscount(ctx context.Context, plan string) (decimal.Decimal, error) {
	f.calls = append(f.calls, plan)
	return f.rate, f.err
}

func TestTariffWithDiscount_AppliesDiscount(t *testing.T) {
	d := &fakeDiscounts{rate: decimal.RequireFromString("0.1")}
	sut := NewTariffWithDiscount(d)

	total, err := sut.Calc(context.Background(), "pro", 3, decimal.NewFromInt(10))
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(27).Equal(total), "got %s, want 27", total)
	assert.Equal(t, []string{"pro"}, d.calls)
}

func TestTariffWithDiscount_ZeroDiscount(t *testing.T) {
	d := &fakeDiscounts{rate: decimal.Zero}
	sut := NewTariffWithDiscount(d)

	total, err := sut.Calc(context.Background(), "basic", 2, decimal.NewFromInt(10))
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(20).Equal(total), "got %s, want 20", total)
	assert.Len(t, d.calls, 1)
}

func TestTariffWithDiscount_NoCachingBetweenCalls(t *testing.T) {
	d := &fakeDiscounts{rate: decimal.RequireFromString("0.25")}
	sut := NewTariffWithDiscount(d)

	for i := 0; i < 3; i++ {
		_, err := sut.Calc(context.Background(), "enterprise", 1, decimal.NewFromInt(25))
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"enterprise", "enterprise", "enterprise"}, d.calls)
}

func TestTariffWithDiscount_NoInputValidation(t *testing.T) {
	d := &fakeDiscounts{rate: decimal.Zero}
	sut := NewTariffWithDiscount(d)

	total, err := sut.Calc(context.Background(), "unknown", -2, decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(-20).Equal(total), "got %s, want -20", total)
	assert.Equal(t, []string{"unknown"}, d.calls)
}

func TestTariffWithDiscount_PropagatesProviderError(t *testing.T) {
	providerErr := errors.New("discount backend unavailable")
	d := &fakeDiscounts{err: providerErr}
	sut := NewTariffWithDiscount(d)

	_, err := sut.Calc(context.Background(), "pro", 3, decimal.NewFromInt(10))
	if err != providerErr {
		t.Fatalf("expected provider error unchanged, got %v", err)
	}
}

func TestTariffWithDiscount_ExactDecimal(t *testing.T) {
	d := &fakeDiscounts{rate: decimal.RequireFromString("0.15")}
	sut := NewTariffWithDiscount(d)

	total, err := sut.Calc(context.Background(), "pro", 7, decimal.RequireFromString("12.10"))
	require.NoError(t, err)

	// 7 * 12.10 * 0.85 = 71.995
	assert.Equal(t, "71.995", total.String())
}
