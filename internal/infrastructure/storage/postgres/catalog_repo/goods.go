// Package catalog_repo provides PostgreSQL implementations of the catalog
// repositories.
package catalog_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"pointorder/internal/core/apperror"
	"pointorder/internal/core/id"
	"pointorder/internal/domain/catalogs/goods"
	"pointorder/internal/infrastructure/storage/postgres"
)

const goodsTable = "cat_goods"

var goodsColumns = []string{
	"id", "base_id", "code", "name",
	"box_unit", "pack_unit", "piece_unit",
	"pack_per_box", "piece_per_pack",
	"sale_price", "active",
	"created_at", "updated_at", "version",
}

// GoodsRepo implements goods.Repository.
type GoodsRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewGoodsRepo creates a new goods repository.
func NewGoodsRepo(txm *postgres.TxManager) *GoodsRepo {
	return &GoodsRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ goods.Repository = (*GoodsRepo)(nil)

func (r *GoodsRepo) Create(ctx context.Context, g *goods.Goods) error {
	q := r.builder.Insert(goodsTable).
		Columns(goodsColumns...).
		Values(
			g.ID, g.BaseID, g.Code, g.Name,
			g.BoxUnit, g.PackUnit, g.PieceUnit,
			g.PackPerBox, g.PiecePerPack,
			g.SalePrice, g.Active,
			g.CreatedAt, g.UpdatedAt, g.Version,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("goods", "code", g.Code).WithCause(err)
		}
		return fmt.Errorf("insert goods: %w", err)
	}

	return nil
}

func (r *GoodsRepo) GetByID(ctx context.Context, goodsID id.ID) (*goods.Goods, error) {
	q := r.builder.Select(goodsColumns...).
		From(goodsTable).
		Where(squirrel.Eq{"id": goodsID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var g goods.Goods
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &g, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("goods", goodsID.String())
		}
		return nil, fmt.Errorf("get goods: %w", err)
	}

	return &g, nil
}

func (r *GoodsRepo) GetByIDs(ctx context.Context, goodsIDs []id.ID) (map[id.ID]*goods.Goods, error) {
	result := make(map[id.ID]*goods.Goods, len(goodsIDs))
	if len(goodsIDs) == 0 {
		return result, nil
	}

	q := r.builder.Select(goodsColumns...).
		From(goodsTable).
		Where(squirrel.Eq{"id": goodsIDs})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*goods.Goods
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select goods: %w", err)
	}

	for _, g := range items {
		result[g.ID] = g
	}
	return result, nil
}

// Update writes the record back, expecting the version it was loaded with.
// The version column is managed here (optimistic locking), not by callers.
func (r *GoodsRepo) Update(ctx context.Context, g *goods.Goods) error {
	now := time.Now().UTC()
	q := r.builder.Update(goodsTable).
		Set("code", g.Code).
		Set("name", g.Name).
		Set("box_unit", g.BoxUnit).
		Set("pack_unit", g.PackUnit).
		Set("piece_unit", g.PieceUnit).
		Set("pack_per_box", g.PackPerBox).
		Set("piece_per_pack", g.PiecePerPack).
		Set("sale_price", g.SalePrice).
		Set("active", g.Active).
		Set("updated_at", now).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{
			"id":      g.ID,
			"version": g.Version,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update goods: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("goods", g.ID.String())
	}

	g.UpdatedAt = now
	g.SetVersion(g.Version + 1)
	return nil
}

func (r *GoodsRepo) List(ctx context.Context, filter goods.ListFilter) ([]*goods.Goods, error) {
	q := r.builder.Select(goodsColumns...).
		From(goodsTable).
		Where(squirrel.Eq{"base_id": filter.BaseID})

	if filter.ActiveOnly {
		q = q.Where(squirrel.Eq{"active": true})
	}
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"code": searchPattern},
			squirrel.ILike{"name": searchPattern},
		})
	}

	q = q.OrderBy("code")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*goods.Goods
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select goods: %w", err)
	}

	return items, nil
}
