package resources_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian/internal/resources"
	"github.com/meridian-erp/meridian/internal/shared"
	_ "github.com/meridian-erp/meridian/testing"
)

type stubRepo struct {
	equipmentTypes map[int64]resources.EquipmentType
	locations      map[int64]resources.Location
	nextID         int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		equipmentTypes: map[int64]resources.EquipmentType{},
		locations:      map[int64]resources.Location{},
	}
}

func (r *stubRepo) ListEquipmentTypes(ctx context.Context, f shared.ListFilters) ([]resources.EquipmentType, int, error) {
	out := make([]resources.EquipmentType, 0, len(r.equipmentTypes))
	for _, t := range r.equipmentTypes {
		if t.Active {
			out = append(out, t)
		}
	}
	return out, len(out), nil
}

func (r *stubRepo) GetEquipmentType(ctx context.Context, id int64) (resources.EquipmentType, error) {
	t, ok := r.equipmentTypes[id]
	if !ok || !t.Active {
		return resources.EquipmentType{}, shared.ErrNotFound
	}
	return t, nil
}

func (r *stubRepo) CreateEquipmentType(ctx context.Context, t resources.EquipmentType) (resources.EquipmentType, error) {
	r.nextID++
	t.ID = r.nextID
	r.equipmentTypes[t.ID] = t
	return t, nil
}

func (r *stubRepo) UpdateEquipmentType(ctx context.Context, t resources.EquipmentType) error {
	if _, ok := r.equipmentTypes[t.ID]; !ok {
		return shared.ErrNotFound
	}
	r.equipmentTypes[t.ID] = t
	return nil
}

func (r *stubRepo) DeactivateEquipmentType(ctx context.Context, id, actorID int64) error {
	t, ok := r.equipmentTypes[id]
	if !ok || !t.Active {
		return shared.ErrNotFound
	}
	t.Active = false
	t.UpdatedBy = actorID
	r.equipmentTypes[id] = t
	return nil
}

func (r *stubRepo) ListLocations(ctx context.Context, f shared.ListFilters) ([]resources.Location, int, error) {
	out := make([]resources.Location, 0, len(r.locations))
	for _, l := range r.locations {
		out = append(out, l)
	}
	return out, len(out), nil
}

func (r *stubRepo) GetLocation(ctx context.Context, id int64) (resources.Location, error) {
	l, ok := r.locations[id]
	if !ok {
		return resources.Location{}, shared.ErrNotFound
	}
	return l, nil
}

func (r *stubRepo) CreateLocation(ctx context.Context, l resources.Location) (resources.Location, error) {
	r.nextID++
	l.ID = r.nextID
	r.locations[l.ID] = l
	return l, nil
}

func (r *stubRepo) UpdateLocation(ctx context.Context, l resources.Location) error {
	if _, ok := r.locations[l.ID]; !ok {
		return shared.ErrNotFound
	}
	r.locations[l.ID] = l
	return nil
}

func (r *stubRepo) DeleteLocation(ctx context.Context, id int64) error {
	if _, ok := r.locations[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.locations, id)
	return nil
}

func TestCreateEquipmentTypeStampsActor(t *testing.T) {
	repo := newStubRepo()
	svc := resources.NewService(repo, nil, nil)

	created, err := svc.CreateEquipmentType(context.Background(), 42, resources.EquipmentType{Name: "Mobile crane", Active: true})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, int64(42), created.UpdatedBy)
}

func TestDeactivateEquipmentTypeKeepsRow(t *testing.T) {
	repo := newStubRepo()
	svc := resources.NewService(repo, nil, nil)

	created, err := svc.CreateEquipmentType(context.Background(), 42, resources.EquipmentType{Name: "Mobile crane", Active: true})
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateEquipmentType(context.Background(), 42, created.ID))

	_, err = svc.GetEquipmentType(context.Background(), created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	// Equipment referencing the type still resolves it through the row.
	assert.Contains(t, repo.equipmentTypes, created.ID)
	assert.False(t, repo.equipmentTypes[created.ID].Active)
}

func TestDeactivateEquipmentTypeMissing(t *testing.T) {
	svc := resources.NewService(newStubRepo(), nil, nil)
	assert.ErrorIs(t, svc.DeactivateEquipmentType(context.Background(), 42, 99), shared.ErrNotFound)
}

func TestLocationLifecycle(t *testing.T) {
	repo := newStubRepo()
	svc := resources.NewService(repo, nil, nil)
	ctx := context.Background()

	created, err := svc.CreateLocation(ctx, 42, resources.Location{Code: "WH-01", Name: "Main warehouse"})
	require.NoError(t, err)

	created.Description = "Inbound goods"
	require.NoError(t, svc.UpdateLocation(ctx, 42, created))

	got, err := svc.GetLocation(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Inbound goods", got.Description)

	require.NoError(t, svc.DeleteLocation(ctx, 42, created.ID))
	_, err = svc.GetLocation(ctx, created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
