package goods

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pointorder/internal/core/apperror"
	"pointorder/internal/core/id"
)

type fakeRepo struct {
	items map[id.ID]*Goods
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[id.ID]*Goods)}
}

func (r *fakeRepo) Create(_ context.Context, g *Goods) error {
	cp := *g
	r.items[g.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, goodsID id.ID) (*Goods, error) {
	g, ok := r.items[goodsID]
	if !ok {
		return nil, apperror.NewNotFound("goods", goodsID.String())
	}
	cp := *g
	return &cp, nil
}

func (r *fakeRepo) GetByIDs(_ context.Context, goodsIDs []id.ID) (map[id.ID]*Goods, error) {
	result := make(map[id.ID]*Goods)
	for _, gid := range goodsIDs {
		if g, ok := r.items[gid]; ok {
			result[gid] = g
		}
	}
	return result, nil
}

// Update mirrors the postgres repo's optimistic-lock contract: the stored
// version must match the version the entity was loaded with, and the repo
// itself increments it.
func (r *fakeRepo) Update(_ context.Context, g *Goods) error {
	stored, ok := r.items[g.ID]
	if !ok {
		return apperror.NewNotFound("goods", g.ID.String())
	}
	if stored.Version != g.Version {
		return apperror.NewConcurrentModification("goods", g.ID.String())
	}
	cp := *g
	cp.Version++
	r.items[g.ID] = &cp
	g.SetVersion(cp.Version)
	return nil
}

func (r *fakeRepo) List(_ context.Context, _ ListFilter) ([]*Goods, error) {
	var items []*Goods
	for _, g := range r.items {
		items = append(items, g)
	}
	return items, nil
}

func TestService_Create_Validation(t *testing.T) {
	svc := NewService(newFakeRepo())
	baseID := id.New()

	tests := []struct {
		name  string
		goods *Goods
		field string
	}{
		{"missing name", NewGoods(baseID, "G-1", "", 10, 20), "name"},
		{"zero packPerBox", NewGoods(baseID, "G-2", "Red", 0, 20), "packPerBox"},
		{"negative piecePerPack", NewGoods(baseID, "G-3", "Red", 10, -1), "piecePerPack"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Create(context.Background(), tt.goods)
			require.Error(t, err)

			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
			assert.Equal(t, tt.field, appErr.Details["field"])
		})
	}
}

func TestService_GetByIDs_AllFound(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	baseID := id.New()

	a := NewGoods(baseID, "G-1", "Red", 10, 20)
	b := NewGoods(baseID, "G-2", "Blue", 6, 20)
	require.NoError(t, svc.Create(context.Background(), a))
	require.NoError(t, svc.Create(context.Background(), b))

	found, err := svc.GetByIDs(context.Background(), []id.ID{a.ID, b.ID})
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.Equal(t, "Red", found[a.ID].Name)
}

func TestService_Update_LoadModifyUpdate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	g := NewGoods(id.New(), "G-1", "Red", 10, 20)
	require.NoError(t, svc.Create(context.Background(), g))

	loaded, err := svc.GetByID(context.Background(), g.ID)
	require.NoError(t, err)
	loaded.Name = "Red (new blend)"

	// A plain load-modify-update cycle must succeed; the repo owns the
	// version increment.
	require.NoError(t, svc.Update(context.Background(), loaded))
	assert.Equal(t, 2, loaded.Version)

	again, err := svc.GetByID(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Red (new blend)", again.Name)
	assert.Equal(t, 2, again.Version)
}

func TestService_Update_StaleVersionRejected(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	g := NewGoods(id.New(), "G-1", "Red", 10, 20)
	require.NoError(t, svc.Create(context.Background(), g))

	stale := *g
	fresh := *g
	fresh.Name = "Red v2"
	require.NoError(t, svc.Update(context.Background(), &fresh))

	stale.Name = "Red v3"
	err := svc.Update(context.Background(), &stale)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeConcurrentModification))
}

func TestService_GetByIDs_MissingFails(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	a := NewGoods(id.New(), "G-1", "Red", 10, 20)
	require.NoError(t, svc.Create(context.Background(), a))

	missing := id.New()
	_, err := svc.GetByIDs(context.Background(), []id.ID{a.ID, missing})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
