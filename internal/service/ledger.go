package service

import (
	"fmt"
	"time"

	"bakery-backend/internal/apperr"
	"bakery-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment allocation and weekly stats are kept free of I/O so the
// ledger math can be exercised directly.

// applyToVoucher pays at most the voucher's outstanding balance and
// returns the amount actually applied. IsPaid is recomputed so that
// isPaid == (paidAmount >= amount) holds after every call.
func applyToVoucher(v *model.Voucher, amount decimal.Decimal) decimal.Decimal {
	applied := decimal.Min(v.Outstanding(), amount)
	v.PaidAmount = v.PaidAmount.Add(applied)
	v.IsPaid = v.PaidAmount.GreaterThanOrEqual(v.Amount)
	return applied
}

// allocatePayment distributes a payment over the supplier's vouchers.
//
// Targeted mode (voucherID set): the payment goes to that voucher only,
// capped at its outstanding balance. Excess is absorbed: it is neither
// refunded nor spread to other vouchers.
//
// Sweep mode (voucherID nil): vouchers are paid oldest-first in stored
// order until the amount runs out; leftover is absorbed the same way.
func allocatePayment(vouchers []model.Voucher, amount decimal.Decimal, voucherID *uuid.UUID) error {
	if voucherID != nil {
		for i := range vouchers {
			if vouchers[i].ID == *voucherID {
				applyToVoucher(&vouchers[i], amount)
				return nil
			}
		}
		return fmt.Errorf("%w: voucher %s", apperr.ErrNotFound, voucherID)
	}

	remaining := amount
	for i := range vouchers {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		if vouchers[i].IsPaid {
			continue
		}
		applied := applyToVoucher(&vouchers[i], remaining)
		remaining = remaining.Sub(applied)
	}
	return nil
}

// WeeklyStats is an ad-hoc aggregate over the last seven days. It is
// never persisted. Outstanding is a plain difference of the two
// windowed sums and may go negative: payments inside the window can
// settle vouchers outside it.
type WeeklyStats struct {
	WindowStart   time.Time       `json:"window_start"`
	WindowEnd     time.Time       `json:"window_end"`
	TotalVouchers decimal.Decimal `json:"total_vouchers"`
	TotalPayments decimal.Decimal `json:"total_payments"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	VoucherCount  int             `json:"voucher_count"`
	PaymentCount  int             `json:"payment_count"`
}

// ComputeWeeklyStats sums vouchers and payments dated within
// [now-7d, now], lower bound inclusive.
func ComputeWeeklyStats(supplier *model.Supplier, now time.Time) WeeklyStats {
	start := now.Add(-7 * 24 * time.Hour)
	stats := WeeklyStats{
		WindowStart:   start,
		WindowEnd:     now,
		TotalVouchers: decimal.Zero,
		TotalPayments: decimal.Zero,
	}

	inWindow := func(d time.Time) bool {
		return !d.Before(start) && !d.After(now)
	}

	for _, v := range supplier.Vouchers {
		if inWindow(v.Date) {
			stats.TotalVouchers = stats.TotalVouchers.Add(v.Amount)
			stats.VoucherCount++
		}
	}
	for _, p := range supplier.Payments {
		if inWindow(p.Date) {
			stats.TotalPayments = stats.TotalPayments.Add(p.Amount)
			stats.PaymentCount++
		}
	}

	stats.Outstanding = stats.TotalVouchers.Sub(stats.TotalPayments)
	return stats
}

// sumVoucherAmounts recomputes the persisted purchase total from scratch.
func sumVoucherAmounts(vouchers []model.Voucher) decimal.Decimal {
	total := decimal.Zero
	for _, v := range vouchers {
		total = total.Add(v.Amount)
	}
	return total
}
