// Package order_repo provides the PostgreSQL implementation of the order
// repository.
package order_repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"pointorder/internal/core/apperror"
	"pointorder/internal/core/id"
	"pointorder/internal/domain/orders"
	"pointorder/internal/infrastructure/storage/postgres"
)

const (
	ordersTable     = "pto_orders"
	orderLinesTable = "pto_order_lines"
)

var orderColumns = []string{
	"id", "code", "base_id", "point_id", "order_date",
	"status", "payment_status",
	"total_amount", "paid_amount", "payment_notes",
	"shipping_address", "shipping_phone",
	"tracking_number", "delivery_person", "delivery_phone",
	"confirmed_at", "shipped_at", "delivered_at", "completed_at", "cancelled_at",
	"created_by", "confirmed_by",
	"created_at", "updated_at", "version",
}

var lineColumns = []string{
	"id", "order_id", "line_no", "goods_id", "goods_name",
	"box_quantity", "pack_quantity", "unit_price", "total_price",
	"actual_box_quantity", "actual_pack_quantity",
}

// OrderRepo implements orders.Repository.
type OrderRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewOrderRepo creates a new order repository.
func NewOrderRepo(txm *postgres.TxManager) *OrderRepo {
	return &OrderRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ orders.Repository = (*OrderRepo)(nil)

func (r *OrderRepo) Create(ctx context.Context, o *orders.Order) error {
	q := r.builder.Insert(ordersTable).
		Columns(orderColumns...).
		Values(
			o.ID, o.Code, o.BaseID, o.PointID, o.OrderDate,
			o.Status, o.PaymentStatus,
			o.TotalAmount, o.PaidAmount, o.PaymentNotes,
			o.ShippingAddress, o.ShippingPhone,
			o.TrackingNumber, o.DeliveryPerson, o.DeliveryPhone,
			o.ConfirmedAt, o.ShippedAt, o.DeliveredAt, o.CompletedAt, o.CancelledAt,
			o.CreatedBy, o.ConfirmedBy,
			o.CreatedAt, o.UpdatedAt, o.Version,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		// Unique violation on the code column means the random draw
		// collided; the service retries with a fresh code.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("order", "code", o.Code).WithCause(err)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*orders.Order, error) {
	return r.getOne(ctx, squirrel.Eq{"id": orderID}, false, orderID.String())
}

func (r *OrderRepo) GetByIDForUpdate(ctx context.Context, orderID id.ID) (*orders.Order, error) {
	return r.getOne(ctx, squirrel.Eq{"id": orderID}, true, orderID.String())
}

func (r *OrderRepo) GetByCode(ctx context.Context, code string) (*orders.Order, error) {
	return r.getOne(ctx, squirrel.Eq{"code": code}, false, code)
}

func (r *OrderRepo) getOne(ctx context.Context, where squirrel.Eq, forUpdate bool, ref string) (*orders.Order, error) {
	q := r.builder.Select(orderColumns...).
		From(ordersTable).
		Where(where).
		Limit(1)
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var o orders.Order
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &o, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("order", ref)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	return &o, nil
}

func (r *OrderRepo) GetLines(ctx context.Context, orderID id.ID) ([]orders.OrderLine, error) {
	q := r.builder.Select(lineColumns...).
		From(orderLinesTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []orders.OrderLine
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

func (r *OrderRepo) SaveLines(ctx context.Context, orderID id.ID, lines []orders.OrderLine) error {
	querier := r.txm.GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + orderLinesTable + " WHERE order_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, orderID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.builder.Insert(orderLinesTable).Columns(lineColumns...)
	for _, line := range lines {
		q = q.Values(
			line.ID, orderID, line.LineNo, line.GoodsID, line.GoodsName,
			line.BoxQuantity, line.PackQuantity, line.UnitPrice, line.TotalPrice,
			line.ActualBoxQuantity, line.ActualPackQuantity,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

func (r *OrderRepo) Update(ctx context.Context, o *orders.Order) error {
	q := r.builder.Update(ordersTable).
		Set("order_date", o.OrderDate).
		Set("status", o.Status).
		Set("payment_status", o.PaymentStatus).
		Set("total_amount", o.TotalAmount).
		Set("paid_amount", o.PaidAmount).
		Set("payment_notes", o.PaymentNotes).
		Set("shipping_address", o.ShippingAddress).
		Set("shipping_phone", o.ShippingPhone).
		Set("tracking_number", o.TrackingNumber).
		Set("delivery_person", o.DeliveryPerson).
		Set("delivery_phone", o.DeliveryPhone).
		Set("confirmed_at", o.ConfirmedAt).
		Set("shipped_at", o.ShippedAt).
		Set("delivered_at", o.DeliveredAt).
		Set("completed_at", o.CompletedAt).
		Set("cancelled_at", o.CancelledAt).
		Set("confirmed_by", o.ConfirmedBy).
		Set("updated_at", o.UpdatedAt).
		Set("version", o.Version).
		Where(squirrel.Eq{"id": o.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("order", o.ID.String())
	}

	return nil
}

func (r *OrderRepo) Delete(ctx context.Context, orderID id.ID) error {
	querier := r.txm.GetQuerier(ctx)

	if _, err := querier.Exec(ctx, "DELETE FROM "+orderLinesTable+" WHERE order_id = $1", orderID); err != nil {
		return fmt.Errorf("delete lines: %w", err)
	}

	result, err := querier.Exec(ctx, "DELETE FROM "+ordersTable+" WHERE id = $1", orderID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("order", orderID.String())
	}

	return nil
}

// parseOrderBy validates a caller-supplied sort expression against the
// order columns. The result is concatenated into SQL, so anything outside
// the allow-list is rejected, never passed through.
func parseOrderBy(orderBy string) (string, error) {
	if orderBy == "" {
		return "order_date DESC", nil
	}

	allowed := make(map[string]struct{}, len(orderColumns))
	for _, col := range orderColumns {
		allowed[col] = struct{}{}
	}

	// Support "-field" for DESC.
	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	field = strings.TrimSpace(field)
	if field == "" {
		return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy)
	}

	if _, ok := allowed[field]; !ok {
		return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy).WithDetail("field", field)
	}

	return field + " " + direction, nil
}

func (r *OrderRepo) List(ctx context.Context, filter orders.ListFilter) (orders.ListResult, error) {
	result := orders.ListResult{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder.Select(orderColumns...).
		From(ordersTable).
		Where(squirrel.Eq{"base_id": filter.BaseID})

	if filter.PointID != nil {
		q = q.Where(squirrel.Eq{"point_id": *filter.PointID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.PaymentStatus != nil {
		q = q.Where(squirrel.Eq{"payment_status": *filter.PaymentStatus})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"order_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"order_date": *filter.DateTo})
	}
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"code": searchPattern},
			squirrel.ILike{"tracking_number": searchPattern},
		})
	}

	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("select: %w", err)
	}

	return result, nil
}
