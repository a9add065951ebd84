package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pointorder/internal/core/apperror"
	"pointorder/internal/core/types"
)

func TestDerivePaymentStatus(t *testing.T) {
	total := types.MustMoney("100")

	tests := []struct {
		paid string
		want PaymentStatus
	}{
		{"0", PaymentStatusUnpaid},
		{"-5", PaymentStatusUnpaid},
		{"0.01", PaymentStatusPartial},
		{"99.99", PaymentStatusPartial},
		{"100", PaymentStatusPaid},
		{"150", PaymentStatusPaid},
	}

	for _, tt := range tests {
		got := DerivePaymentStatus(types.MustMoney(tt.paid), total)
		assert.Equal(t, tt.want, got, "paid=%s", tt.paid)
	}
}

func TestApplyPayment(t *testing.T) {
	total := types.MustMoney("100")
	paid := types.ZeroMoney()

	paid, status, err := ApplyPayment(paid, total, types.MustMoney("60"))
	require.NoError(t, err)
	assert.True(t, paid.Equal(types.MustMoney("60")))
	assert.Equal(t, PaymentStatusPartial, status)

	paid, status, err = ApplyPayment(paid, total, types.MustMoney("40"))
	require.NoError(t, err)
	assert.True(t, paid.Equal(types.MustMoney("100")))
	assert.Equal(t, PaymentStatusPaid, status)
}

func TestApplyPayment_Overpayment(t *testing.T) {
	// No cap: paid may exceed the total.
	paid, status, err := ApplyPayment(types.MustMoney("90"), types.MustMoney("100"), types.MustMoney("50"))
	require.NoError(t, err)
	assert.True(t, paid.Equal(types.MustMoney("140")))
	assert.Equal(t, PaymentStatusPaid, status)
}

func TestApplyPayment_RejectsNonPositive(t *testing.T) {
	for _, amount := range []string{"0", "-10"} {
		_, _, err := ApplyPayment(types.ZeroMoney(), types.MustMoney("100"), types.MustMoney(amount))
		require.Error(t, err)
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	}
}

func TestPaymentNotes_AppendOnly(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	notes := AppendPaymentNote("", FormatPaymentNote(t0, types.MustMoney("60"), "cash", ""))
	notes = AppendPaymentNote(notes, FormatPaymentNote(t0.Add(time.Hour), types.MustMoney("40"), "transfer", "rest"))

	entries := PaymentNoteEntries(notes)
	require.Len(t, entries, 2)
	assert.Equal(t, "[2026-03-01 10:00:00] received 60.00 (cash)", entries[0])
	assert.Equal(t, "[2026-03-01 11:00:00] received 40.00 (transfer): rest", entries[1])
}
