// Package stock provides the on-hand stock ledger.
package stock

import (
	"context"

	"pointorder/internal/core/entity"
	"pointorder/internal/core/id"
)

// Repository defines storage operations for stock balances.
type Repository interface {
	// GetBalance returns the current balance for (base, goods, location).
	// A missing row reads as a zero balance.
	GetBalance(ctx context.Context, baseID, goodsID, locationID id.ID) (entity.StockBalance, error)

	// GetBalanceForUpdate returns the balance with a row lock.
	// Must be called inside a transaction; used to close the
	// check-then-act window before a debit.
	GetBalanceForUpdate(ctx context.Context, baseID, goodsID, locationID id.ID) (entity.StockBalance, error)

	// GetBalances fetches balances for several goods at one location.
	// Missing rows are absent from the result map (zero balance).
	GetBalances(ctx context.Context, baseID, locationID id.ID, goodsIDs []id.ID) (map[id.ID]entity.StockBalance, error)

	// UpdateBalance writes new quantities for a balance row (upsert).
	UpdateBalance(ctx context.Context, balance entity.StockBalance) error

	// GetBalancesByLocation returns all non-zero balances at a location.
	GetBalancesByLocation(ctx context.Context, baseID, locationID id.ID) ([]entity.StockBalance, error)
}
