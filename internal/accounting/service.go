package accounting

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/meridian-erp/meridian/internal/shared"
)

// Service implements accounting business operations.
type Service struct {
	repo   Repository
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

func (s *Service) ListAccounts(ctx context.Context, filters shared.ListFilters) ([]Account, int, error) {
	return s.repo.ListAccounts(ctx, filters)
}

func (s *Service) GetAccount(ctx context.Context, id int64) (Account, error) {
	return s.repo.GetAccount(ctx, id)
}

// LoadChart fetches both statement sections concurrently. If either load
// fails the whole chart fails; a half-rendered ledger is worse than an
// error page.
func (s *Service) LoadChart(ctx context.Context) (Chart, error) {
	var chart Chart
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		accounts, err := s.repo.ListByClassification(ctx, ClassificationBalanceSheet)
		if err != nil {
			return err
		}
		chart.BalanceSheet = accounts
		return nil
	})
	g.Go(func() error {
		accounts, err := s.repo.ListByClassification(ctx, ClassificationIncomeStatement)
		if err != nil {
			return err
		}
		chart.IncomeStatement = accounts
		return nil
	})
	if err := g.Wait(); err != nil {
		return Chart{}, err
	}
	return chart, nil
}

func (s *Service) CreateAccount(ctx context.Context, actorID int64, a Account) (Account, error) {
	a.UpdatedBy = actorID
	created, err := s.repo.CreateAccount(ctx, a)
	if err != nil {
		return Account{}, err
	}
	s.recordAudit(ctx, actorID, "create", created.ID)
	return created, nil
}

func (s *Service) UpdateAccount(ctx context.Context, actorID int64, a Account) error {
	a.UpdatedBy = actorID
	if err := s.repo.UpdateAccount(ctx, a); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "update", a.ID)
	return nil
}

// DeactivateAccount retires an account from the chart. Ledger accounts are
// never hard-deleted; posted journals must keep resolving.
func (s *Service) DeactivateAccount(ctx context.Context, actorID, id int64) error {
	if err := s.repo.DeactivateAccount(ctx, id, actorID); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "deactivate", id)
	return nil
}

// ExportChartCSV writes the full chart of accounts as CSV.
func (s *Service) ExportChartCSV(ctx context.Context, w io.Writer) error {
	chart, err := s.LoadChart(ctx)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Number", "Name", "Type", "Classification", "Normal Balance"}); err != nil {
		return err
	}
	for _, section := range [][]Account{chart.BalanceSheet, chart.IncomeStatement} {
		for _, a := range section {
			if err := cw.Write([]string{a.Number, a.Name, a.AccountType, a.Classification, a.NormalBalance}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, id int64) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "gl_account",
		EntityID: strconv.FormatInt(id, 10),
	}); err != nil && s.logger != nil {
		s.logger.Warn("record audit", slog.Any("error", err), slog.String("entity", "gl_account"))
	}
}
