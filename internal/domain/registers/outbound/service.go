package outbound

import (
	"context"
	"fmt"

	"pointorder/internal/core/apperror"
	"pointorder/internal/core/entity"
	"pointorder/internal/core/id"
	"pointorder/pkg/logger"
)

// Recorder writes outbound movement rows.
// Called during shipment inside the order transaction, so the audit rows
// commit together with the stock debits they describe.
type Recorder struct {
	repo Repository
}

// NewRecorder creates a movement recorder.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Record validates and inserts movement rows.
func (r *Recorder) Record(ctx context.Context, movements []entity.OutboundMovement) error {
	if len(movements) == 0 {
		return nil
	}

	for i, m := range movements {
		if !m.Cause.Valid() {
			return apperror.NewValidation(fmt.Sprintf("movement %d: unknown cause %q", i, m.Cause))
		}
		if m.Cause == entity.MovementCauseOrder && m.SourceOrderCode == "" {
			return apperror.NewValidation(fmt.Sprintf("movement %d: order cause requires a source order code", i))
		}
		if m.BoxQuantity < 0 || m.PackQuantity < 0 {
			return apperror.NewValidation(fmt.Sprintf("movement %d: quantities must not be negative", i))
		}
		if m.BoxQuantity == 0 && m.PackQuantity == 0 {
			return apperror.NewValidation(fmt.Sprintf("movement %d: empty quantity", i))
		}
		if id.IsNil(m.GoodsID) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: goods is required", i))
		}
	}

	if err := r.repo.CreateMovements(ctx, movements); err != nil {
		return fmt.Errorf("create movements: %w", err)
	}

	logger.Info(ctx, "recorded outbound movements",
		"count", len(movements),
		"cause", movements[0].Cause,
	)
	return nil
}

// GetByOrderCode retrieves all movements that fulfill one order.
func (r *Recorder) GetByOrderCode(ctx context.Context, orderCode string) ([]entity.OutboundMovement, error) {
	return r.repo.GetByOrderCode(ctx, orderCode)
}

// List retrieves movements with filtering.
func (r *Recorder) List(ctx context.Context, filter ListFilter) ([]entity.OutboundMovement, error) {
	return r.repo.List(ctx, filter)
}
