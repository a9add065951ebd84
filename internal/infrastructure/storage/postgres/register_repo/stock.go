// Package register_repo provides PostgreSQL implementations of the
// accumulation register repositories.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pointorder/internal/core/entity"
	"pointorder/internal/core/id"
	"pointorder/internal/domain/registers/stock"
	"pointorder/internal/infrastructure/storage/postgres"
)

const stockBalancesTable = "reg_stock_balances"

var stockBalanceColumns = []string{
	"base_id", "goods_id", "location_id",
	"box_quantity", "pack_quantity",
	"last_movement_at", "updated_at",
}

// StockRepo implements stock.Repository.
type StockRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewStockRepo creates a new stock balance repository.
func NewStockRepo(txm *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ stock.Repository = (*StockRepo)(nil)

func (r *StockRepo) GetBalance(ctx context.Context, baseID, goodsID, locationID id.ID) (entity.StockBalance, error) {
	return r.getBalance(ctx, baseID, goodsID, locationID, false)
}

func (r *StockRepo) GetBalanceForUpdate(ctx context.Context, baseID, goodsID, locationID id.ID) (entity.StockBalance, error) {
	return r.getBalance(ctx, baseID, goodsID, locationID, true)
}

func (r *StockRepo) getBalance(ctx context.Context, baseID, goodsID, locationID id.ID, forUpdate bool) (entity.StockBalance, error) {
	q := r.builder.Select(stockBalanceColumns...).
		From(stockBalancesTable).
		Where(squirrel.Eq{
			"base_id":     baseID,
			"goods_id":    goodsID,
			"location_id": locationID,
		})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return entity.StockBalance{}, fmt.Errorf("build query: %w", err)
	}

	var balance entity.StockBalance
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &balance, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			// No row yet reads as an empty balance.
			return entity.StockBalance{
				BaseID:     baseID,
				GoodsID:    goodsID,
				LocationID: locationID,
			}, nil
		}
		return entity.StockBalance{}, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

func (r *StockRepo) GetBalances(ctx context.Context, baseID, locationID id.ID, goodsIDs []id.ID) (map[id.ID]entity.StockBalance, error) {
	result := make(map[id.ID]entity.StockBalance, len(goodsIDs))
	if len(goodsIDs) == 0 {
		return result, nil
	}

	q := r.builder.Select(stockBalanceColumns...).
		From(stockBalancesTable).
		Where(squirrel.Eq{
			"base_id":     baseID,
			"location_id": locationID,
			"goods_id":    goodsIDs,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []entity.StockBalance
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("get balances: %w", err)
	}

	for _, b := range balances {
		result[b.GoodsID] = b
	}
	return result, nil
}

func (r *StockRepo) UpdateBalance(ctx context.Context, balance entity.StockBalance) error {
	q := r.builder.Insert(stockBalancesTable).
		Columns(stockBalanceColumns...).
		Values(
			balance.BaseID, balance.GoodsID, balance.LocationID,
			balance.BoxQuantity, balance.PackQuantity,
			balance.LastMovementAt, balance.UpdatedAt,
		).
		Suffix(`ON CONFLICT (base_id, goods_id, location_id) DO UPDATE SET
			box_quantity = EXCLUDED.box_quantity,
			pack_quantity = EXCLUDED.pack_quantity,
			last_movement_at = EXCLUDED.last_movement_at,
			updated_at = EXCLUDED.updated_at`)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert balance: %w", err)
	}

	return nil
}

func (r *StockRepo) GetBalancesByLocation(ctx context.Context, baseID, locationID id.ID) ([]entity.StockBalance, error) {
	q := r.builder.Select(stockBalanceColumns...).
		From(stockBalancesTable).
		Where(squirrel.Eq{
			"base_id":     baseID,
			"location_id": locationID,
		}).
		Where("(box_quantity <> 0 OR pack_quantity <> 0)").
		OrderBy("goods_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []entity.StockBalance
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}

	return balances, nil
}
