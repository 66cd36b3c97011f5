package accounting

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian/internal/shared"
)

// Repository is the data access collaborator for the accounting module.
type Repository interface {
	ListAccounts(ctx context.Context, filters shared.ListFilters) ([]Account, int, error)
	ListByClassification(ctx context.Context, classification string) ([]Account, error)
	GetAccount(ctx context.Context, id int64) (Account, error)
	CreateAccount(ctx context.Context, a Account) (Account, error)
	UpdateAccount(ctx context.Context, a Account) error
	DeactivateAccount(ctx context.Context, id, actorID int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Repository backed by PostgreSQL.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const accountColumns = `id, number, name, account_type, classification, normal_balance, active, created_at, updated_at, updated_by`

func (r *repository) ListAccounts(ctx context.Context, filters shared.ListFilters) ([]Account, int, error) {
	query := `SELECT ` + accountColumns + ` FROM gl_accounts WHERE active`
	countQuery := `SELECT COUNT(*) FROM gl_accounts WHERE active`
	args := []any{}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		cond := ` AND (number ILIKE $1 OR name ILIKE $1)`
		query += cond
		countQuery += cond
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY number ASC`
	argCount := len(args)
	query += ` LIMIT $` + strconv.Itoa(argCount+1) + ` OFFSET $` + strconv.Itoa(argCount+2)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return scanAccounts(rows, total)
}

func (r *repository) ListByClassification(ctx context.Context, classification string) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM gl_accounts WHERE active AND classification = $1 ORDER BY number ASC`, classification)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	accounts, _, err := scanAccounts(rows, 0)
	return accounts, err
}

func scanAccounts(rows pgx.Rows, total int) ([]Account, int, error) {
	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Number, &a.Name, &a.AccountType, &a.Classification, &a.NormalBalance, &a.Active, &a.CreatedAt, &a.UpdatedAt, &a.UpdatedBy); err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, a)
	}
	return accounts, total, rows.Err()
}

func (r *repository) GetAccount(ctx context.Context, id int64) (Account, error) {
	var a Account
	err := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM gl_accounts WHERE id = $1`, id).
		Scan(&a.ID, &a.Number, &a.Name, &a.AccountType, &a.Classification, &a.NormalBalance, &a.Active, &a.CreatedAt, &a.UpdatedAt, &a.UpdatedBy)
	if err != nil {
		return Account{}, mapPgError(err)
	}
	return a, nil
}

func (r *repository) CreateAccount(ctx context.Context, a Account) (Account, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO gl_accounts (number, name, account_type, classification, normal_balance, active, created_at, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $8)
		RETURNING id`,
		a.Number, a.Name, a.AccountType, a.Classification, a.NormalBalance, a.Active, now, a.UpdatedBy).
		Scan(&a.ID)
	if err != nil {
		return Account{}, mapPgError(err)
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	return a, nil
}

func (r *repository) UpdateAccount(ctx context.Context, a Account) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE gl_accounts SET number = $2, name = $3, account_type = $4, classification = $5, normal_balance = $6, active = $7, updated_at = $8, updated_by = $9
		WHERE id = $1`,
		a.ID, a.Number, a.Name, a.AccountType, a.Classification, a.NormalBalance, a.Active, time.Now(), a.UpdatedBy)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeactivateAccount(ctx context.Context, id, actorID int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE gl_accounts SET active = FALSE, updated_at = $2, updated_by = $3 WHERE id = $1 AND active`, id, time.Now(), actorID)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func mapPgError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return shared.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrAlreadyExists
	}
	return err
}
