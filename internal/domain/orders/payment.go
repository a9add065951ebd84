package orders

import (
	"fmt"
	"strings"
	"time"

	"pointorder/internal/core/apperror"
	"pointorder/internal/core/types"
)

// PaymentStatus is the derived tri-state payment position of an order.
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "UNPAID"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// ApplyPayment folds one payment confirmation into the paid amount.
// The amount must be positive; refunds and reversal entries are not
// supported. Overpayment is allowed: paidAmount may exceed the total.
//
// Callers serialize concurrent confirmations per order by locking the
// order row; this function is a pure fold.
func ApplyPayment(paid, total, amount types.Money) (types.Money, PaymentStatus, error) {
	if amount.Sign() <= 0 {
		return paid, DerivePaymentStatus(paid, total), apperror.NewValidation("payment amount must be positive").
			WithDetail("amount", amount.String())
	}
	newPaid := paid.Add(amount)
	return newPaid, DerivePaymentStatus(newPaid, total), nil
}

// DerivePaymentStatus maps a paid amount onto the tri-state status.
func DerivePaymentStatus(paid, total types.Money) PaymentStatus {
	switch {
	case paid.Sign() <= 0:
		return PaymentStatusUnpaid
	case paid.Cmp(total) >= 0:
		return PaymentStatusPaid
	default:
		return PaymentStatusPartial
	}
}

// FormatPaymentNote renders one human-readable payment log entry.
func FormatPaymentNote(at time.Time, amount types.Money, method, notes string) string {
	entry := fmt.Sprintf("[%s] received %s", at.UTC().Format("2006-01-02 15:04:05"), amount.StringFixed(2))
	if method != "" {
		entry += fmt.Sprintf(" (%s)", method)
	}
	if notes != "" {
		entry += ": " + notes
	}
	return entry
}

// AppendPaymentNote appends an entry to the payment log.
// The log is append-only; existing entries are never rewritten.
func AppendPaymentNote(existing, entry string) string {
	if existing == "" {
		return entry
	}
	return existing + "\n" + entry
}

// PaymentNoteEntries splits the payment log back into its entries.
func PaymentNoteEntries(notes string) []string {
	if notes == "" {
		return nil
	}
	return strings.Split(notes, "\n")
}
