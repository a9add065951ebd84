package uom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pointorder/internal/core/apperror"
)

func TestToTotalPacks(t *testing.T) {
	tests := []struct {
		name       string
		box, pack  int64
		packPerBox int64
		want       int64
	}{
		{"boxes only", 2, 0, 10, 20},
		{"mixed", 1, 15, 10, 25},
		{"packs only", 0, 7, 12, 7},
		{"zero", 0, 0, 10, 0},
		{"unnormalized pack", 3, 25, 10, 55},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToTotalPacks(tt.box, tt.pack, tt.packPerBox)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToTotalPacks_BadConversionConstant(t *testing.T) {
	for _, k := range []int64{0, -1, -10} {
		_, err := ToTotalPacks(1, 0, k)
		require.Error(t, err)
		assert.True(t, apperror.IsCode(err, apperror.CodeConfiguration))
	}
}

func TestToTotalPacks_NegativeQuantity(t *testing.T) {
	_, err := ToTotalPacks(-1, 0, 10)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestToTotalPacks_Overflow(t *testing.T) {
	_, err := ToTotalPacks(math.MaxInt64, 0, 10)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	_, err = ToTotalPacks(math.MaxInt64/10+1, 0, 10)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	// The largest representable quantity still converts:
	// (MaxInt64/10)*10 + 7 == MaxInt64 exactly.
	got, err := ToTotalPacks(math.MaxInt64/10, 7, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), got)
}

func TestFromTotalPacks(t *testing.T) {
	box, pack, err := FromTotalPacks(25, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), box)
	assert.Equal(t, int64(5), pack)

	box, pack, err = FromTotalPacks(9, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), box)
	assert.Equal(t, int64(9), pack)
}

func TestFromTotalPacks_NegativeTotal(t *testing.T) {
	// A negative total means a debit exceeded the balance; it must be
	// reported, never silently clamped.
	_, _, err := FromTotalPacks(-5, 10)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
}

func TestRoundTrip(t *testing.T) {
	// fromTotalPacks(toTotalPacks(b, p, k), k) == normalized (b, p)
	for k := int64(1); k <= 24; k++ {
		for b := int64(0); b <= 5; b++ {
			for p := int64(0); p <= 40; p += 7 {
				total, err := ToTotalPacks(b, p, k)
				require.NoError(t, err)

				gotBox, gotPack, err := FromTotalPacks(total, k)
				require.NoError(t, err)

				wantBox, wantPack, err := Normalize(b, p, k)
				require.NoError(t, err)

				assert.Equal(t, wantBox, gotBox)
				assert.Equal(t, wantPack, gotPack)
				assert.Less(t, gotPack, k)

				// Total is preserved by normalization.
				back, err := ToTotalPacks(gotBox, gotPack, k)
				require.NoError(t, err)
				assert.Equal(t, total, back)
			}
		}
	}
}
