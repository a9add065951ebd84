// Package uom converts between nested units of measure.
//
// Quantities arrive as (box, pack) pairs; packPerBox is a per-goods
// constant. All comparison and subtraction happens on the linear
// pack-equivalent total, so mixed-unit arithmetic never loses packs.
package uom

import (
	"fmt"
	"math"

	"pointorder/internal/core/apperror"
)

// ToTotalPacks converts a (box, pack) pair to its pack-equivalent total.
// A non-positive packPerBox means the goods record is misconfigured.
func ToTotalPacks(box, pack, packPerBox int64) (int64, error) {
	if packPerBox <= 0 {
		return 0, apperror.NewConfiguration(
			fmt.Sprintf("packPerBox must be positive, got %d", packPerBox),
		).WithDetail("packPerBox", packPerBox)
	}
	if box < 0 || pack < 0 {
		return 0, apperror.NewValidation("quantities must not be negative").
			WithDetail("box", box).
			WithDetail("pack", pack)
	}
	// box*packPerBox + pack must stay in int64 range.
	if box > (math.MaxInt64-pack)/packPerBox {
		return 0, apperror.NewValidation("quantity exceeds representable range").
			WithDetail("box", box).
			WithDetail("pack", pack).
			WithDetail("packPerBox", packPerBox)
	}
	return box*packPerBox + pack, nil
}

// FromTotalPacks converts a pack-equivalent total back to a normalized
// (box, pack) pair with pack < packPerBox.
//
// A negative total is rejected: it means a debit exceeded the balance,
// which callers must surface as insufficient stock, never clamp to zero.
func FromTotalPacks(total, packPerBox int64) (box, pack int64, err error) {
	if packPerBox <= 0 {
		return 0, 0, apperror.NewConfiguration(
			fmt.Sprintf("packPerBox must be positive, got %d", packPerBox),
		).WithDetail("packPerBox", packPerBox)
	}
	if total < 0 {
		return 0, 0, apperror.NewInsufficientStock(nil).
			WithDetail("totalPacks", total)
	}
	return total / packPerBox, total % packPerBox, nil
}

// Normalize rewrites a (box, pack) pair so that pack < packPerBox while
// preserving the pack-equivalent total.
func Normalize(box, pack, packPerBox int64) (int64, int64, error) {
	total, err := ToTotalPacks(box, pack, packPerBox)
	if err != nil {
		return 0, 0, err
	}
	return FromTotalPacks(total, packPerBox)
}
