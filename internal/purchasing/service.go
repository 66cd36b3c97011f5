package purchasing

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/meridian-erp/meridian/internal/shared"
)

// TaskEnqueuer schedules background work after mutations.
type TaskEnqueuer interface {
	EnqueueSearchReindex(ctx context.Context, entity string, id int64) error
}

// Service implements purchasing business operations.
type Service struct {
	repo   Repository
	audit  *shared.AuditLogger
	tasks  TaskEnqueuer
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, audit *shared.AuditLogger, tasks TaskEnqueuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, tasks: tasks, logger: logger}
}

func (s *Service) ListOrders(ctx context.Context, filters shared.ListFilters) ([]PurchaseOrder, int, error) {
	return s.repo.ListOrders(ctx, filters)
}

func (s *Service) GetOrder(ctx context.Context, id int64) (PurchaseOrder, error) {
	return s.repo.GetOrder(ctx, id)
}

func (s *Service) CreateOrder(ctx context.Context, actorID int64, po PurchaseOrder) (PurchaseOrder, error) {
	po.UpdatedBy = actorID
	created, err := s.repo.CreateOrder(ctx, po)
	if err != nil {
		return PurchaseOrder{}, err
	}
	s.recordAudit(ctx, actorID, "create", "purchase_order", created.ID)
	s.scheduleReindex(ctx, "purchase_order", created.ID)
	return created, nil
}

func (s *Service) UpdateOrder(ctx context.Context, actorID int64, po PurchaseOrder) error {
	po.UpdatedBy = actorID
	if err := s.repo.UpdateOrder(ctx, po); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "update", "purchase_order", po.ID)
	s.scheduleReindex(ctx, "purchase_order", po.ID)
	return nil
}

// DeactivateOrder hides an order from operational lists without
// destroying its document history.
func (s *Service) DeactivateOrder(ctx context.Context, actorID, id int64) error {
	if err := s.repo.DeactivateOrder(ctx, id, actorID); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "deactivate", "purchase_order", id)
	return nil
}

func (s *Service) ListSuppliers(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error) {
	return s.repo.ListSuppliers(ctx, filters)
}

func (s *Service) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	return s.repo.GetSupplier(ctx, id)
}

func (s *Service) CreateSupplier(ctx context.Context, actorID int64, sup Supplier) (Supplier, error) {
	created, err := s.repo.CreateSupplier(ctx, sup)
	if err != nil {
		return Supplier{}, err
	}
	s.recordAudit(ctx, actorID, "create", "supplier", created.ID)
	return created, nil
}

func (s *Service) UpdateSupplier(ctx context.Context, actorID int64, sup Supplier) error {
	if err := s.repo.UpdateSupplier(ctx, sup); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "update", "supplier", sup.ID)
	return nil
}

func (s *Service) DeleteSupplier(ctx context.Context, actorID, id int64) error {
	if err := s.repo.DeleteSupplier(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "delete", "supplier", id)
	return nil
}

func (s *Service) ListTypes(ctx context.Context, filters shared.ListFilters) ([]SupplierType, int, error) {
	return s.repo.ListTypes(ctx, filters)
}

func (s *Service) GetType(ctx context.Context, id int64) (SupplierType, error) {
	return s.repo.GetType(ctx, id)
}

func (s *Service) CreateType(ctx context.Context, actorID int64, t SupplierType) (SupplierType, error) {
	created, err := s.repo.CreateType(ctx, t)
	if err != nil {
		return SupplierType{}, err
	}
	s.recordAudit(ctx, actorID, "create", "supplier_type", created.ID)
	return created, nil
}

func (s *Service) UpdateType(ctx context.Context, actorID int64, t SupplierType) error {
	if err := s.repo.UpdateType(ctx, t); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "update", "supplier_type", t.ID)
	return nil
}

func (s *Service) DeleteType(ctx context.Context, actorID, id int64) error {
	if err := s.repo.DeleteType(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "delete", "supplier_type", id)
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
