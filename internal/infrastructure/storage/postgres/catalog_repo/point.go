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
	"pointorder/internal/domain/catalogs/point"
	"pointorder/internal/infrastructure/storage/postgres"
)

const pointsTable = "cat_points"

var pointColumns = []string{
	"id", "base_id", "code", "name",
	"contact_name", "phone", "address",
	"owner_user_id", "active",
	"created_at", "updated_at", "version",
}

// PointRepo implements point.Repository.
type PointRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewPointRepo creates a new point repository.
func NewPointRepo(txm *postgres.TxManager) *PointRepo {
	return &PointRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ point.Repository = (*PointRepo)(nil)

func (r *PointRepo) Create(ctx context.Context, p *point.Point) error {
	q := r.builder.Insert(pointsTable).
		Columns(pointColumns...).
		Values(
			p.ID, p.BaseID, p.Code, p.Name,
			p.ContactName, p.Phone, p.Address,
			p.OwnerUserID, p.Active,
			p.CreatedAt, p.UpdatedAt, p.Version,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("point", "code", p.Code).WithCause(err)
		}
		return fmt.Errorf("insert point: %w", err)
	}

	return nil
}

func (r *PointRepo) GetByID(ctx context.Context, pointID id.ID) (*point.Point, error) {
	q := r.builder.Select(pointColumns...).
		From(pointsTable).
		Where(squirrel.Eq{"id": pointID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p point.Point
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("point", pointID.String())
		}
		return nil, fmt.Errorf("get point: %w", err)
	}

	return &p, nil
}

// Update writes the record back, expecting the version it was loaded with.
// The version column is managed here (optimistic locking), not by callers.
func (r *PointRepo) Update(ctx context.Context, p *point.Point) error {
	now := time.Now().UTC()
	q := r.builder.Update(pointsTable).
		Set("code", p.Code).
		Set("name", p.Name).
		Set("contact_name", p.ContactName).
		Set("phone", p.Phone).
		Set("address", p.Address).
		Set("owner_user_id", p.OwnerUserID).
		Set("active", p.Active).
		Set("updated_at", now).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{
			"id":      p.ID,
			"version": p.Version,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update point: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("point", p.ID.String())
	}

	p.UpdatedAt = now
	p.SetVersion(p.Version + 1)
	return nil
}

func (r *PointRepo) List(ctx context.Context, filter point.ListFilter) ([]*point.Point, error) {
	q := r.builder.Select(pointColumns...).
		From(pointsTable).
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

	var items []*point.Point
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select points: %w", err)
	}

	return items, nil
}
