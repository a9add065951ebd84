package point

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pointorder/internal/core/apperror"
	"pointorder/internal/core/id"
)

type fakeRepo struct {
	items map[id.ID]*Point
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[id.ID]*Point)}
}

func (r *fakeRepo) Create(_ context.Context, p *Point) error {
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, pointID id.ID) (*Point, error) {
	p, ok := r.items[pointID]
	if !ok {
		return nil, apperror.NewNotFound("point", pointID.String())
	}
	cp := *p
	return &cp, nil
}

// Update mirrors the postgres repo's optimistic-lock contract: the stored
// version must match the version the entity was loaded with, and the repo
// itself increments it.
func (r *fakeRepo) Update(_ context.Context, p *Point) error {
	stored, ok := r.items[p.ID]
	if !ok {
		return apperror.NewNotFound("point", p.ID.String())
	}
	if stored.Version != p.Version {
		return apperror.NewConcurrentModification("point", p.ID.String())
	}
	cp := *p
	cp.Version++
	r.items[p.ID] = &cp
	p.SetVersion(cp.Version)
	return nil
}

func (r *fakeRepo) List(_ context.Context, _ ListFilter) ([]*Point, error) {
	var items []*Point
	for _, p := range r.items {
		items = append(items, p)
	}
	return items, nil
}

func TestService_GetActive(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	p := NewPoint(id.New(), "P-1", "Downtown Kiosk")
	require.NoError(t, svc.Create(context.Background(), p))

	got, err := svc.GetActive(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestService_GetActive_InactiveRejected(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	p := NewPoint(id.New(), "P-1", "Closed Kiosk")
	p.Active = false
	require.NoError(t, svc.Create(context.Background(), p))

	_, err := svc.GetActive(context.Background(), p.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestService_Update_LoadModifyUpdate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	p := NewPoint(id.New(), "P-1", "Downtown Kiosk")
	require.NoError(t, svc.Create(context.Background(), p))

	loaded, err := svc.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	loaded.Phone = "555-0199"

	require.NoError(t, svc.Update(context.Background(), loaded))
	assert.Equal(t, 2, loaded.Version)

	again, err := svc.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-0199", again.Phone)
}

func TestService_GetActive_NotFound(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.GetActive(context.Background(), id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
