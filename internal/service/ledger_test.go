package service

import (
	"testing"
	"time"

	"bakery-backend/internal/apperr"
	"bakery-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func voucher(amount, paid string) model.Voucher {
	v := model.Voucher{
		ID:         uuid.New(),
		Amount:     dec(amount),
		PaidAmount: dec(paid),
		Date:       time.Now(),
	}
	v.IsPaid = v.PaidAmount.GreaterThanOrEqual(v.Amount)
	return v
}

func requireInvariants(t *testing.T, vouchers []model.Voucher) {
	t.Helper()
	for _, v := range vouchers {
		require.False(t, v.PaidAmount.IsNegative(), "paidAmount must not go negative")
		require.True(t, v.PaidAmount.LessThanOrEqual(v.Amount), "paidAmount must not exceed amount")
		require.Equal(t, v.PaidAmount.GreaterThanOrEqual(v.Amount), v.IsPaid)
	}
}

func TestTargetedPaymentCapsAtOutstanding(t *testing.T) {
	v := voucher("100", "40")
	vouchers := []model.Voucher{v, voucher("200", "0")}

	err := allocatePayment(vouchers, dec("80"), &vouchers[0].ID)
	require.NoError(t, err)

	require.True(t, vouchers[0].PaidAmount.Equal(dec("100")))
	require.True(t, vouchers[0].IsPaid)
	// the excess 20 is absorbed, not spread to the second voucher
	require.True(t, vouchers[1].PaidAmount.IsZero())
	require.False(t, vouchers[1].IsPaid)
	requireInvariants(t, vouchers)
}

func TestTargetedPaymentUnknownVoucher(t *testing.T) {
	vouchers := []model.Voucher{voucher("100", "0")}
	missing := uuid.New()

	err := allocatePayment(vouchers, dec("50"), &missing)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.True(t, vouchers[0].PaidAmount.IsZero())
}

func TestSweepPaysOldestFirst(t *testing.T) {
	vouchers := []model.Voucher{voucher("50", "0"), voucher("30", "0")}

	err := allocatePayment(vouchers, dec("60"), nil)
	require.NoError(t, err)

	require.True(t, vouchers[0].PaidAmount.Equal(dec("50")))
	require.True(t, vouchers[0].IsPaid)
	require.True(t, vouchers[1].PaidAmount.Equal(dec("10")))
	require.False(t, vouchers[1].IsPaid)
	requireInvariants(t, vouchers)
}

func TestSweepSkipsPaidVouchers(t *testing.T) {
	vouchers := []model.Voucher{voucher("40", "40"), voucher("30", "10")}

	err := allocatePayment(vouchers, dec("15"), nil)
	require.NoError(t, err)

	require.True(t, vouchers[0].PaidAmount.Equal(dec("40")))
	require.True(t, vouchers[1].PaidAmount.Equal(dec("25")))
	requireInvariants(t, vouchers)
}

func TestSweepAbsorbsLeftover(t *testing.T) {
	vouchers := []model.Voucher{voucher("20", "0")}

	err := allocatePayment(vouchers, dec("1000"), nil)
	require.NoError(t, err)

	require.True(t, vouchers[0].PaidAmount.Equal(dec("20")))
	require.True(t, vouchers[0].IsPaid)
	requireInvariants(t, vouchers)
}

func TestSweepOnNoVouchers(t *testing.T) {
	err := allocatePayment(nil, dec("10"), nil)
	require.NoError(t, err)
}

func TestWeeklyStatsWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	old := now.Add(-8 * 24 * time.Hour)
	recent := now.Add(-2 * 24 * time.Hour)

	supplier := &model.Supplier{
		Vouchers: []model.Voucher{
			{Amount: dec("100"), Date: old},
			{Amount: dec("50"), Date: recent},
		},
		Payments: []model.Payment{
			{Amount: dec("30"), Date: recent},
			{Amount: dec("999"), Date: now.Add(time.Hour)}, // future, outside window
		},
	}

	stats := ComputeWeeklyStats(supplier, now)

	require.True(t, stats.TotalVouchers.Equal(dec("50")))
	require.Equal(t, 1, stats.VoucherCount)
	require.True(t, stats.TotalPayments.Equal(dec("30")))
	require.Equal(t, 1, stats.PaymentCount)
	require.True(t, stats.Outstanding.Equal(dec("20")))
}

func TestWeeklyStatsWindowStartInclusive(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	boundary := now.Add(-7 * 24 * time.Hour)

	supplier := &model.Supplier{
		Vouchers: []model.Voucher{{Amount: dec("10"), Date: boundary}},
	}

	stats := ComputeWeeklyStats(supplier, now)
	require.Equal(t, 1, stats.VoucherCount)
	require.True(t, stats.TotalVouchers.Equal(dec("10")))
}

func TestWeeklyStatsOutstandingCanGoNegative(t *testing.T) {
	now := time.Now()
	supplier := &model.Supplier{
		Payments: []model.Payment{{Amount: dec("70"), Date: now.Add(-time.Hour)}},
	}

	stats := ComputeWeeklyStats(supplier, now)
	require.True(t, stats.Outstanding.Equal(dec("-70")))
}
