package outbound

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pointorder/internal/core/apperror"
	"pointorder/internal/core/entity"
	"pointorder/internal/core/id"
)

type fakeRepo struct {
	created []entity.OutboundMovement
}

func (f *fakeRepo) CreateMovements(_ context.Context, movements []entity.OutboundMovement) error {
	f.created = append(f.created, movements...)
	return nil
}

func (f *fakeRepo) GetByOrderCode(_ context.Context, code string) ([]entity.OutboundMovement, error) {
	var out []entity.OutboundMovement
	for _, m := range f.created {
		if m.SourceOrderCode == code {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRepo) List(_ context.Context, _ ListFilter) ([]entity.OutboundMovement, error) {
	return f.created, nil
}

func validMovement() entity.OutboundMovement {
	return entity.NewOutboundMovement(
		id.New(), id.New(), id.New(),
		entity.MovementCauseOrder,
		2, 3,
		"PTO-4F8ZK2M1Q0B",
		id.New(),
	)
}

func TestRecord(t *testing.T) {
	repo := &fakeRepo{}
	rec := NewRecorder(repo)

	m := validMovement()
	require.NoError(t, rec.Record(context.Background(), []entity.OutboundMovement{m}))
	require.Len(t, repo.created, 1)

	got, err := rec.GetByOrderCode(context.Background(), m.SourceOrderCode)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRecord_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*entity.OutboundMovement)
	}{
		{"unknown cause", func(m *entity.OutboundMovement) { m.Cause = "RETURN" }},
		{"order cause without code", func(m *entity.OutboundMovement) { m.SourceOrderCode = "" }},
		{"negative box", func(m *entity.OutboundMovement) { m.BoxQuantity = -1 }},
		{"empty quantity", func(m *entity.OutboundMovement) { m.BoxQuantity = 0; m.PackQuantity = 0 }},
		{"missing goods", func(m *entity.OutboundMovement) { m.GoodsID = id.Nil() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{}
			rec := NewRecorder(repo)

			m := validMovement()
			tt.mutate(&m)

			err := rec.Record(context.Background(), []entity.OutboundMovement{m})
			require.Error(t, err)
			assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
			assert.Empty(t, repo.created, "rejected batch must write nothing")
		})
	}
}

func TestRecord_EmptyBatch(t *testing.T) {
	repo := &fakeRepo{}
	rec := NewRecorder(repo)
	require.NoError(t, rec.Record(context.Background(), nil))
	assert.Empty(t, repo.created)
}
