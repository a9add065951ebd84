package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pointorder/internal/core/entity"
	"pointorder/internal/domain/registers/outbound"
	"pointorder/internal/infrastructure/storage/postgres"
)

const outboundMovementsTable = "reg_outbound_movements"

var outboundMovementColumns = []string{
	"id", "base_id", "movement_date",
	"goods_id", "location_id", "cause",
	"box_quantity", "pack_quantity",
	"source_order_code", "created_by", "created_at",
}

// OutboundRepo implements outbound.Repository. Movement rows are
// insert-only; the repository carries no update or delete statements.
type OutboundRepo struct {
	txm     *postgres.TxManager
	batch   *postgres.BatchInserter
	builder squirrel.StatementBuilderType
}

// NewOutboundRepo creates a new outbound movement repository.
func NewOutboundRepo(txm *postgres.TxManager) *OutboundRepo {
	return &OutboundRepo{
		txm:     txm,
		batch:   postgres.NewBatchInserter(txm),
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ outbound.Repository = (*OutboundRepo)(nil)

func (r *OutboundRepo) CreateMovements(ctx context.Context, movements []entity.OutboundMovement) error {
	if len(movements) == 0 {
		return nil
	}

	// Inside a transaction the COPY protocol is much cheaper than a
	// multi-row INSERT for large shipments.
	if r.txm.GetTx(ctx) != nil {
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, []any{
				m.ID, m.BaseID, m.MovementDate,
				m.GoodsID, m.LocationID, m.Cause,
				m.BoxQuantity, m.PackQuantity,
				m.SourceOrderCode, m.CreatedBy, m.CreatedAt,
			})
		}
		if _, err := r.batch.CopyFromSlice(ctx, outboundMovementsTable, outboundMovementColumns, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(outboundMovementsTable).Columns(outboundMovementColumns...)
	for _, m := range movements {
		q = q.Values(
			m.ID, m.BaseID, m.MovementDate,
			m.GoodsID, m.LocationID, m.Cause,
			m.BoxQuantity, m.PackQuantity,
			m.SourceOrderCode, m.CreatedBy, m.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}

	return nil
}

func (r *OutboundRepo) GetByOrderCode(ctx context.Context, orderCode string) ([]entity.OutboundMovement, error) {
	q := r.builder.Select(outboundMovementColumns...).
		From(outboundMovementsTable).
		Where(squirrel.Eq{"source_order_code": orderCode}).
		OrderBy("created_at", "goods_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.OutboundMovement
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

func (r *OutboundRepo) List(ctx context.Context, filter outbound.ListFilter) ([]entity.OutboundMovement, error) {
	q := r.builder.Select(outboundMovementColumns...).
		From(outboundMovementsTable).
		Where(squirrel.Eq{"base_id": filter.BaseID})

	if filter.GoodsID != nil {
		q = q.Where(squirrel.Eq{"goods_id": *filter.GoodsID})
	}
	if filter.LocationID != nil {
		q = q.Where(squirrel.Eq{"location_id": *filter.LocationID})
	}
	if filter.Cause != nil {
		q = q.Where(squirrel.Eq{"cause": *filter.Cause})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"movement_date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"movement_date": *filter.ToDate})
	}

	q = q.OrderBy("movement_date DESC")
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

	var movements []entity.OutboundMovement
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}
