package parts_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian/internal/parts"
	"github.com/meridian-erp/meridian/internal/shared"
	_ "github.com/meridian-erp/meridian/testing"
)

// stubRepo is an in-memory parts.Repository that records mutations.
type stubRepo struct {
	parts         map[int64]parts.Part
	groups        map[int64]parts.PartGroup
	units         map[int64]parts.UnitOfMeasure
	searchDeletes []string
	nextID        int64
	err           error
	searchErr     error
	txCalls       int
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		parts:  map[int64]parts.Part{},
		groups: map[int64]parts.PartGroup{},
		units:  map[int64]parts.UnitOfMeasure{},
	}
}

func (r *stubRepo) WithTx(ctx context.Context, fn func(context.Context, parts.Repository) error) error {
	r.txCalls++
	return fn(ctx, r)
}

func (r *stubRepo) DeleteSearchDocument(ctx context.Context, entity string, id int64) error {
	if r.searchErr != nil {
		return r.searchErr
	}
	r.searchDeletes = append(r.searchDeletes, fmt.Sprintf("%s:%d", entity, id))
	return nil
}

func (r *stubRepo) ListParts(ctx context.Context, f shared.ListFilters) ([]parts.Part, int, error) {
	out := make([]parts.Part, 0, len(r.parts))
	for _, p := range r.parts {
		out = append(out, p)
	}
	return out, len(out), r.err
}

func (r *stubRepo) GetPart(ctx context.Context, id int64) (parts.Part, error) {
	p, ok := r.parts[id]
	if !ok {
		return parts.Part{}, shared.ErrNotFound
	}
	return p, nil
}

func (r *stubRepo) CreatePart(ctx context.Context, p parts.Part) (parts.Part, error) {
	if r.err != nil {
		return parts.Part{}, r.err
	}
	r.nextID++
	p.ID = r.nextID
	r.parts[p.ID] = p
	return p, nil
}

func (r *stubRepo) UpdatePart(ctx context.Context, p parts.Part) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.parts[p.ID]; !ok {
		return shared.ErrNotFound
	}
	r.parts[p.ID] = p
	return nil
}

func (r *stubRepo) DeletePart(ctx context.Context, id int64) error {
	if _, ok := r.parts[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.parts, id)
	return nil
}

func (r *stubRepo) ListGroups(ctx context.Context, f shared.ListFilters) ([]parts.PartGroup, int, error) {
	return nil, 0, r.err
}

func (r *stubRepo) GetGroup(ctx context.Context, id int64) (parts.PartGroup, error) {
	g, ok := r.groups[id]
	if !ok {
		return parts.PartGroup{}, shared.ErrNotFound
	}
	return g, nil
}

func (r *stubRepo) CreateGroup(ctx context.Context, g parts.PartGroup) (parts.PartGroup, error) {
	if r.err != nil {
		return parts.PartGroup{}, r.err
	}
	r.nextID++
	g.ID = r.nextID
	r.groups[g.ID] = g
	return g, nil
}

func (r *stubRepo) UpdateGroup(ctx context.Context, g parts.PartGroup) error {
	if _, ok := r.groups[g.ID]; !ok {
		return shared.ErrNotFound
	}
	r.groups[g.ID] = g
	return nil
}

func (r *stubRepo) DeleteGroup(ctx context.Context, id int64) error {
	if _, ok := r.groups[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.groups, id)
	return nil
}

func (r *stubRepo) ListUnits(ctx context.Context, f shared.ListFilters) ([]parts.UnitOfMeasure, int, error) {
	return nil, 0, r.err
}

func (r *stubRepo) GetUnit(ctx context.Context, id int64) (parts.UnitOfMeasure, error) {
	u, ok := r.units[id]
	if !ok {
		return parts.UnitOfMeasure{}, shared.ErrNotFound
	}
	return u, nil
}

func (r *stubRepo) CreateUnit(ctx context.Context, u parts.UnitOfMeasure) (parts.UnitOfMeasure, error) {
	if r.err != nil {
		return parts.UnitOfMeasure{}, r.err
	}
	r.nextID++
	u.ID = r.nextID
	r.units[u.ID] = u
	return u, nil
}

func (r *stubRepo) UpdateUnit(ctx context.Context, u parts.UnitOfMeasure) error {
	if _, ok := r.units[u.ID]; !ok {
		return shared.ErrNotFound
	}
	r.units[u.ID] = u
	return nil
}

func (r *stubRepo) DeleteUnit(ctx context.Context, id int64) error {
	if _, ok := r.units[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.units, id)
	return nil
}

// stubEnqueuer records scheduled reindex work.
type stubEnqueuer struct {
	calls []string
	err   error
}

func (e *stubEnqueuer) EnqueueSearchReindex(ctx context.Context, entity string, id int64) error {
	e.calls = append(e.calls, entity)
	return e.err
}

func TestCreatePartStampsActorAndSchedulesReindex(t *testing.T) {
	repo := newStubRepo()
	tasks := &stubEnqueuer{}
	svc := parts.NewService(repo, nil, tasks, nil)

	created, err := svc.CreatePart(context.Background(), 42, parts.Part{Code: "VLV-100", Name: "Gate valve"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, int64(42), created.UpdatedBy)
	assert.Equal(t, []string{"part"}, tasks.calls)
}

func TestCreatePartRepositoryFailure(t *testing.T) {
	repo := newStubRepo()
	repo.err = shared.ErrAlreadyExists
	tasks := &stubEnqueuer{}
	svc := parts.NewService(repo, nil, tasks, nil)

	_, err := svc.CreatePart(context.Background(), 42, parts.Part{Code: "VLV-100"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	assert.Empty(t, tasks.calls, "nothing is scheduled when the write fails")
}

func TestUpdatePartRejectsMissingID(t *testing.T) {
	svc := parts.NewService(newStubRepo(), nil, nil, nil)

	err := svc.UpdatePart(context.Background(), 42, parts.Part{Name: "Gate valve"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdatePartStampsActor(t *testing.T) {
	repo := newStubRepo()
	repo.parts[1] = parts.Part{ID: 1, Code: "VLV-100", UpdatedBy: 7}
	svc := parts.NewService(repo, nil, nil, nil)

	require.NoError(t, svc.UpdatePart(context.Background(), 42, parts.Part{ID: 1, Code: "VLV-100", Name: "Gate valve"}))
	assert.Equal(t, int64(42), repo.parts[1].UpdatedBy)
}

func TestDeletePart(t *testing.T) {
	repo := newStubRepo()
	repo.parts[1] = parts.Part{ID: 1}
	svc := parts.NewService(repo, nil, nil, nil)

	require.NoError(t, svc.DeletePart(context.Background(), 42, 1))
	assert.Empty(t, repo.parts)

	assert.ErrorIs(t, svc.DeletePart(context.Background(), 42, 99), shared.ErrNotFound)
	assert.ErrorIs(t, svc.DeletePart(context.Background(), 42, 0), shared.ErrNotFound)
}

func TestDeletePartCleansSearchDocumentInSameTransaction(t *testing.T) {
	repo := newStubRepo()
	repo.parts[1] = parts.Part{ID: 1}
	svc := parts.NewService(repo, nil, nil, nil)

	require.NoError(t, svc.DeletePart(context.Background(), 42, 1))
	assert.Equal(t, 1, repo.txCalls, "delete and search cleanup run under one transaction")
	assert.Equal(t, []string{"part:1"}, repo.searchDeletes)
}

func TestDeletePartFailedSearchCleanupAbortsDelete(t *testing.T) {
	repo := newStubRepo()
	repo.parts[1] = parts.Part{ID: 1}
	repo.searchErr = context.DeadlineExceeded
	svc := parts.NewService(repo, nil, nil, nil)

	err := svc.DeletePart(context.Background(), 42, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, repo.searchDeletes)
}

func TestGetPartRejectsNonPositiveID(t *testing.T) {
	svc := parts.NewService(newStubRepo(), nil, nil, nil)

	_, err := svc.GetPart(context.Background(), 0)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = svc.GetPart(context.Background(), -4)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestEnqueueFailureDoesNotFailMutation(t *testing.T) {
	repo := newStubRepo()
	tasks := &stubEnqueuer{err: context.DeadlineExceeded}
	svc := parts.NewService(repo, nil, tasks, nil)

	_, err := svc.CreatePart(context.Background(), 42, parts.Part{Code: "VLV-100"})
	assert.NoError(t, err, "reindex scheduling is best effort")
}

func TestGroupLifecycle(t *testing.T) {
	repo := newStubRepo()
	svc := parts.NewService(repo, nil, nil, nil)
	ctx := context.Background()

	created, err := svc.CreateGroup(ctx, 42, parts.PartGroup{Name: "Valves"})
	require.NoError(t, err)

	created.Description = "Flow control"
	require.NoError(t, svc.UpdateGroup(ctx, 42, created))

	got, err := svc.GetGroup(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Flow control", got.Description)

	require.NoError(t, svc.DeleteGroup(ctx, 42, created.ID))
	_, err = svc.GetGroup(ctx, created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUnitLifecycle(t *testing.T) {
	repo := newStubRepo()
	svc := parts.NewService(repo, nil, nil, nil)
	ctx := context.Background()

	created, err := svc.CreateUnit(ctx, 42, parts.UnitOfMeasure{Code: "EA", Name: "Each"})
	require.NoError(t, err)

	created.Name = "Each (unit)"
	require.NoError(t, svc.UpdateUnit(ctx, 42, created))
	require.NoError(t, svc.DeleteUnit(ctx, 42, created.ID))

	assert.ErrorIs(t, svc.UpdateUnit(ctx, 42, parts.UnitOfMeasure{}), shared.ErrNotFound)
}
