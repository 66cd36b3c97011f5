package resources

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/meridian-erp/meridian/internal/shared"
)

// Service implements resources business operations.
type Service struct {
	repo   Repository
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

func (s *Service) ListEquipmentTypes(ctx context.Context, filters shared.ListFilters) ([]EquipmentType, int, error) {
	return s.repo.ListEquipmentTypes(ctx, filters)
}

func (s *Service) GetEquipmentType(ctx context.Context, id int64) (EquipmentType, error) {
	return s.repo.GetEquipmentType(ctx, id)
}

func (s *Service) CreateEquipmentType(ctx context.Context, actorID int64, t EquipmentType) (EquipmentType, error) {
	t.UpdatedBy = actorID
	created, err := s.repo.CreateEquipmentType(ctx, t)
	if err != nil {
		return EquipmentType{}, err
	}
	s.recordAudit(ctx, actorID, "create", "equipment_type", created.ID)
	return created, nil
}

func (s *Service) UpdateEquipmentType(ctx context.Context, actorID int64, t EquipmentType) error {
	t.UpdatedBy = actorID
	if err := s.repo.UpdateEquipmentType(ctx, t); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "update", "equipment_type", t.ID)
	return nil
}

// DeactivateEquipmentType retires a type; equipment already classified under
// it keeps its reference.
func (s *Service) DeactivateEquipmentType(ctx context.Context, actorID, id int64) error {
	if err := s.repo.DeactivateEquipmentType(ctx, id, actorID); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "deactivate", "equipment_type", id)
	return nil
}

func (s *Service) ListLocations(ctx context.Context, filters shared.ListFilters) ([]Location, int, error) {
	return s.repo.ListLocations(ctx, filters)
}

func (s *Service) GetLocation(ctx context.Context, id int64) (Location, error) {
	return s.repo.GetLocation(ctx, id)
}

func (s *Service) CreateLocation(ctx context.Context, actorID int64, l Location) (Location, error) {
	created, err := s.repo.CreateLocation(ctx, l)
	if err != nil {
		return Location{}, err
	}
	s.recordAudit(ctx, actorID, "create", "location", created.ID)
	return created, nil
}

func (s *Service) UpdateLocation(ctx context.Context, actorID int64, l Location) error {
	if err := s.repo.UpdateLocation(ctx, l); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "update", "location", l.ID)
	return nil
}

func (s *Service) DeleteLocation(ctx context.Context, actorID, id int64) error {
	if err := s.repo.DeleteLocation(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "delete", "location", id)
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
