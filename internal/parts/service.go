package parts

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/meridian-erp/meridian/internal/shared"
)

// TaskEnqueuer schedules background work after mutations. Nil is fine; the
// module works without a worker.
type TaskEnqueuer interface {
	EnqueueSearchReindex(ctx context.Context, entity string, id int64) error
}

// Service performs parts mutations: one data access call per operation plus
// audit and best-effort reindex scheduling.
type Service struct {
	repo   Repository
	audit  *shared.AuditLogger
	tasks  TaskEnqueuer
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, audit *shared.AuditLogger, tasks TaskEnqueuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, tasks: tasks, logger: logger}
}

func (s *Service) ListParts(ctx context.Context, filters shared.ListFilters) ([]Part, int, error) {
	return s.repo.ListParts(ctx, filters)
}

func (s *Service) GetPart(ctx context.Context, id int64) (Part, error) {
	if id <= 0 {
		return Part{}, shared.ErrNotFound
	}
	return s.repo.GetPart(ctx, id)
}

func (s *Service) CreatePart(ctx context.Context, actorID int64, p Part) (Part, error) {
	p.UpdatedBy = actorID
	created, err := s.repo.CreatePart(ctx, p)
	if err != nil {
		return Part{}, err
	}
	s.recordAudit(ctx, actorID, "create", "part", created.ID)
	s.scheduleReindex(ctx, "part", created.ID)
	return created, nil
}

func (s *Service) UpdatePart(ctx context.Context, actorID int64, p Part) error {
	if p.ID <= 0 {
		return shared.ErrNotFound
	}
	p.UpdatedBy = actorID
	if err := s.repo.UpdatePart(ctx, p); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "update", "part", p.ID)
	s.scheduleReindex(ctx, "part", p.ID)
	return nil
}

// DeletePart removes the part and its search document in one transaction so
// a deleted part can never linger in search results.
func (s *Service) DeletePart(ctx context.Context, actorID, id int64) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.DeletePart(ctx, id); err != nil {
			return err
		}
		return repo.DeleteSearchDocument(ctx, "part", id)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "delete", "part", id)
	return nil
}

func (s *Service) ListGroups(ctx context.Context, filters shared.ListFilters) ([]PartGroup, int, error) {
	return s.repo.ListGroups(ctx, filters)
}

func (s *Service) GetGroup(ctx context.Context, id int64) (PartGroup, error) {
	if id <= 0 {
		return PartGroup{}, shared.ErrNotFound
	}
	return s.repo.GetGroup(ctx, id)
}

func (s *Service) CreateGroup(ctx context.Context, actorID int64, g PartGroup) (PartGroup, error) {
	created, err := s.repo.CreateGroup(ctx, g)
	if err != nil {
		return PartGroup{}, err
	}
	s.recordAudit(ctx, actorID, "create", "part_group", created.ID)
	return created, nil
}

func (s *Service) UpdateGroup(ctx context.Context, actorID int64, g PartGroup) error {
	if g.ID <= 0 {
		return shared.ErrNotFound
	}
	if err := s.repo.UpdateGroup(ctx, g); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "update", "part_group", g.ID)
	return nil
}

func (s *Service) DeleteGroup(ctx context.Context, actorID, id int64) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	if err := s.repo.DeleteGroup(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "delete", "part_group", id)
	return nil
}

func (s *Service) ListUnits(ctx context.Context, filters shared.ListFilters) ([]UnitOfMeasure, int, error) {
	return s.repo.ListUnits(ctx, filters)
}

func (s *Service) GetUnit(ctx context.Context, id int64) (UnitOfMeasure, error) {
	if id <= 0 {
		return UnitOfMeasure{}, shared.ErrNotFound
	}
	return s.repo.GetUnit(ctx, id)
}

func (s *Service) CreateUnit(ctx context.Context, actorID int64, u UnitOfMeasure) (UnitOfMeasure, error) {
	created, err := s.repo.CreateUnit(ctx, u)
	if err != nil {
		return UnitOfMeasure{}, err
	}
	s.recordAudit(ctx, actorID, "create", "unit_of_measure", created.ID)
	return created, nil
}

func (s *Service) UpdateUnit(ctx context.Context, actorID int64, u UnitOfMeasure) error {
	if u.ID <= 0 {
		return shared.ErrNotFound
	}
	if err := s.repo.UpdateUnit(ctx, u); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "update", "unit_of_measure", u.ID)
	return nil
}

func (s *Service) DeleteUnit(ctx context.Context, actorID, id int64) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	if err := s.repo.DeleteUnit(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "delete", "unit_of_measure", id)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action, entity string, id int64) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: strconv.FormatInt(id, 10),
	}); err != nil && s.logger != nil {
		s.logger.Warn("record audit", slog.Any("error", err), slog.String("entity", entity))
	}
}

func (s *Service) scheduleReindex(ctx context.Context, entity string, id int64) {
	if s.tasks == nil {
		return
	}
	if err := s.tasks.EnqueueSearchReindex(ctx, entity, id); err != nil && s.logger != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("enqueue reindex", slog.Any("error", err), slog.String("entity", entity))
	}
}
