package accounting_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian/internal/accounting"
	"github.com/meridian-erp/meridian/internal/shared"
	_ "github.com/meridian-erp/meridian/testing"
)

// chartRepo serves a fixed chart and records which classifications were asked for.
type chartRepo struct {
	mu          sync.Mutex
	byClass     map[string][]accounting.Account
	classErr    map[string]error
	classCalls  []string
	deactivated []int64
}

func (r *chartRepo) ListAccounts(ctx context.Context, f shared.ListFilters) ([]accounting.Account, int, error) {
	return nil, 0, nil
}

func (r *chartRepo) ListByClassification(ctx context.Context, classification string) ([]accounting.Account, error) {
	r.mu.Lock()
	r.classCalls = append(r.classCalls, classification)
	r.mu.Unlock()
	if err := r.classErr[classification]; err != nil {
		return nil, err
	}
	return r.byClass[classification], nil
}

func (r *chartRepo) GetAccount(ctx context.Context, id int64) (accounting.Account, error) {
	return accounting.Account{}, shared.ErrNotFound
}

func (r *chartRepo) CreateAccount(ctx context.Context, a accounting.Account) (accounting.Account, error) {
	a.ID = 1
	return a, nil
}

func (r *chartRepo) UpdateAccount(ctx context.Context, a accounting.Account) error {
	return nil
}

func (r *chartRepo) DeactivateAccount(ctx context.Context, id, actorID int64) error {
	r.deactivated = append(r.deactivated, id)
	return nil
}

func fixtureChart() map[string][]accounting.Account {
	return map[string][]accounting.Account{
		accounting.ClassificationBalanceSheet: {
			{Number: "1000", Name: "Assets", AccountType: accounting.TypeHeading, Classification: accounting.ClassificationBalanceSheet, NormalBalance: accounting.BalanceDebit},
			{Number: "1100", Name: "Cash", AccountType: accounting.TypePosting, Classification: accounting.ClassificationBalanceSheet, NormalBalance: accounting.BalanceDebit},
		},
		accounting.ClassificationIncomeStatement: {
			{Number: "4000", Name: "Revenue", AccountType: accounting.TypePosting, Classification: accounting.ClassificationIncomeStatement, NormalBalance: accounting.BalanceCredit},
		},
	}
}

func TestLoadChartLoadsBothSections(t *testing.T) {
	repo := &chartRepo{byClass: fixtureChart()}
	svc := accounting.NewService(repo, nil, nil)

	chart, err := svc.LoadChart(context.Background())
	require.NoError(t, err)

	require.Len(t, chart.BalanceSheet, 2)
	require.Len(t, chart.IncomeStatement, 1)
	assert.Equal(t, "1000", chart.BalanceSheet[0].Number)
	assert.Equal(t, "4000", chart.IncomeStatement[0].Number)
	assert.ElementsMatch(t, []string{
		accounting.ClassificationBalanceSheet,
		accounting.ClassificationIncomeStatement,
	}, repo.classCalls)
}

func TestLoadChartFailsWhole(t *testing.T) {
	boom := errors.New("connection reset")
	repo := &chartRepo{
		byClass:  fixtureChart(),
		classErr: map[string]error{accounting.ClassificationIncomeStatement: boom},
	}
	svc := accounting.NewService(repo, nil, nil)

	chart, err := svc.LoadChart(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, chart.BalanceSheet, "a partial chart is never returned")
	assert.Empty(t, chart.IncomeStatement)
}

func TestExportChartCSV(t *testing.T) {
	repo := &chartRepo{byClass: fixtureChart()}
	svc := accounting.NewService(repo, nil, nil)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportChartCSV(context.Background(), &buf))

	want := "Number,Name,Type,Classification,Normal Balance\n" +
		"1000,Assets,Heading,Balance Sheet,Debit\n" +
		"1100,Cash,Posting,Balance Sheet,Debit\n" +
		"4000,Revenue,Posting,Income Statement,Credit\n"
	assert.Equal(t, want, buf.String(), "balance sheet rows precede income statement rows")
}

func TestCreateAccountStampsActor(t *testing.T) {
	repo := &chartRepo{byClass: fixtureChart()}
	svc := accounting.NewService(repo, nil, nil)

	created, err := svc.CreateAccount(context.Background(), 42, accounting.Account{Number: "1200", Name: "Receivables"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), created.UpdatedBy)
}

func TestDeactivateAccount(t *testing.T) {
	repo := &chartRepo{byClass: fixtureChart()}
	svc := accounting.NewService(repo, nil, nil)

	require.NoError(t, svc.DeactivateAccount(context.Background(), 42, 9))
	assert.Equal(t, []int64{9}, repo.deactivated)
}
