package purchasing

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

// Repository is the data access collaborator for the purchasing module.
type Repository interface {
	ListOrders(ctx context.Context, filters shared.ListFilters) ([]PurchaseOrder, int, error)
	GetOrder(ctx context.Context, id int64) (PurchaseOrder, error)
	CreateOrder(ctx context.Context, po PurchaseOrder) (PurchaseOrder, error)
	UpdateOrder(ctx context.Context, po PurchaseOrder) error
	DeactivateOrder(ctx context.Context, id, actorID int64) error

	ListSuppliers(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error)
	GetSupplier(ctx context.Context, id int64) (Supplier, error)
	CreateSupplier(ctx context.Context, s Supplier) (Supplier, error)
	UpdateSupplier(ctx context.Context, s Supplier) error
	DeleteSupplier(ctx context.Context, id int64) error

	ListTypes(ctx context.Context, filters shared.ListFilters) ([]SupplierType, int, error)
	GetType(ctx context.Context, id int64) (SupplierType, error)
	CreateType(ctx context.Context, t SupplierType) (SupplierType, error)
	UpdateType(ctx context.Context, t SupplierType) error
	DeleteType(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Repository backed by PostgreSQL.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const orderColumns = `id, number, supplier_id, order_date, order_type, status, notes, total, active, created_at, updated_at, updated_by`

func (r *repository) ListOrders(ctx context.Context, filters shared.ListFilters) ([]PurchaseOrder, int, error) {
	query := `SELECT ` + orderColumns + ` FROM purchase_orders WHERE active`
	countQuery := `SELECT COUNT(*) FROM purchase_orders WHERE active`
	args := []any{}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		cond := ` AND number ILIKE $1`
		query += cond
		countQuery += cond
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY ` + orderSortOrder(filters.SortBy, filters.SortDir)
	argCount := len(args)
	query += ` LIMIT $` + strconv.Itoa(argCount+1) + ` OFFSET $` + strconv.Itoa(argCount+2)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []PurchaseOrder
	for rows.Next() {
		var po PurchaseOrder
		if err := rows.Scan(&po.ID, &po.Number, &po.SupplierID, &po.OrderDate, &po.OrderType, &po.Status, &po.Notes, &po.Total, &po.Active, &po.CreatedAt, &po.UpdatedAt, &po.UpdatedBy); err != nil {
			return nil, 0, err
		}
		orders = append(orders, po)
	}
	return orders, total, rows.Err()
}

func (r *repository) GetOrder(ctx context.Context, id int64) (PurchaseOrder, error) {
	var po PurchaseOrder
	err := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM purchase_orders WHERE id = $1`, id).
		Scan(&po.ID, &po.Number, &po.SupplierID, &po.OrderDate, &po.OrderType, &po.Status, &po.Notes, &po.Total, &po.Active, &po.CreatedAt, &po.UpdatedAt, &po.UpdatedBy)
	if err != nil {
		return PurchaseOrder{}, mapPgError(err)
	}
	return po, nil
}

func (r *repository) CreateOrder(ctx context.Context, po PurchaseOrder) (PurchaseOrder, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO purchase_orders (number, supplier_id, order_date, order_type, status, notes, total, active, created_at, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8, $8, $9)
		RETURNING id`,
		po.Number, po.SupplierID, po.OrderDate, po.OrderType, po.Status, po.Notes, po.Total, now, po.UpdatedBy).
		Scan(&po.ID)
	if err != nil {
		return PurchaseOrder{}, mapPgError(err)
	}
	po.Active = true
	po.CreatedAt = now
	po.UpdatedAt = now
	return po, nil
}

func (r *repository) UpdateOrder(ctx context.Context, po PurchaseOrder) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE purchase_orders SET number = $2, supplier_id = $3, order_date = $4, order_type = $5, status = $6, notes = $7, total = $8, updated_at = $9, updated_by = $10
		WHERE id = $1 AND active`,
		po.ID, po.Number, po.SupplierID, po.OrderDate, po.OrderType, po.Status, po.Notes, po.Total, time.Now(), po.UpdatedBy)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeactivateOrder(ctx context.Context, id, actorID int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE purchase_orders SET active = FALSE, updated_at = $2, updated_by = $3 WHERE id = $1 AND active`, id, time.Now(), actorID)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListSuppliers(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error) {
	query := `SELECT id, name, COALESCE(type_id, 0), COALESCE(account_manager_id, ''), tax_percent, active FROM suppliers WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM suppliers WHERE 1=1`
	args := []any{}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		query += ` AND name ILIKE $1`
		countQuery += ` AND name ILIKE $1`
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name ` + sortDir(filters.SortDir)
	argCount := len(args)
	query += ` LIMIT $` + strconv.Itoa(argCount+1) + ` OFFSET $` + strconv.Itoa(argCount+2)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.TypeID, &s.AccountManagerID, &s.TaxPercent, &s.Active); err != nil {
			return nil, 0, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, total, rows.Err()
}

func (r *repository) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	var s Supplier
	err := r.pool.QueryRow(ctx, `SELECT id, name, COALESCE(type_id, 0), COALESCE(account_manager_id, ''), tax_percent, active FROM suppliers WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.TypeID, &s.AccountManagerID, &s.TaxPercent, &s.Active)
	if err != nil {
		return Supplier{}, mapPgError(err)
	}
	return s, nil
}

func (r *repository) CreateSupplier(ctx context.Context, s Supplier) (Supplier, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO suppliers (name, type_id, account_manager_id, tax_percent, active)
		VALUES ($1, NULLIF($2, 0), NULLIF($3, ''), $4, $5)
		RETURNING id`,
		s.Name, s.TypeID, s.AccountManagerID, s.TaxPercent, s.Active).
		Scan(&s.ID)
	if err != nil {
		return Supplier{}, mapPgError(err)
	}
	return s, nil
}

func (r *repository) UpdateSupplier(ctx context.Context, s Supplier) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE suppliers SET name = $2, type_id = NULLIF($3, 0), account_manager_id = NULLIF($4, ''), tax_percent = $5, active = $6
		WHERE id = $1`,
		s.ID, s.Name, s.TypeID, s.AccountManagerID, s.TaxPercent, s.Active)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteSupplier(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListTypes(ctx context.Context, filters shared.ListFilters) ([]SupplierType, int, error) {
	query := `SELECT id, name, COALESCE(color, '') FROM supplier_types WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM supplier_types WHERE 1=1`
	args := []any{}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		query += ` AND name ILIKE $1`
		countQuery += ` AND name ILIKE $1`
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name ` + sortDir(filters.SortDir)
	argCount := len(args)
	query += ` LIMIT $` + strconv.Itoa(argCount+1) + ` OFFSET $` + strconv.Itoa(argCount+2)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var types []SupplierType
	for rows.Next() {
		var t SupplierType
		if err := rows.Scan(&t.ID, &t.Name, &t.Color); err != nil {
			return nil, 0, err
		}
		types = append(types, t)
	}
	return types, total, rows.Err()
}

func (r *repository) GetType(ctx context.Context, id int64) (SupplierType, error) {
	var t SupplierType
	err := r.pool.QueryRow(ctx, `SELECT id, name, COALESCE(color, '') FROM supplier_types WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Color)
	if err != nil {
		return SupplierType{}, mapPgError(err)
	}
	return t, nil
}

func (r *repository) CreateType(ctx context.Context, t SupplierType) (SupplierType, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO supplier_types (name, color) VALUES ($1, NULLIF($2, '')) RETURNING id`, t.Name, t.Color).Scan(&t.ID)
	if err != nil {
		return SupplierType{}, mapPgError(err)
	}
	return t, nil
}

func (r *repository) UpdateType(ctx context.Context, t SupplierType) error {
	tag, err := r.pool.Exec(ctx, `UPDATE supplier_types SET name = $2, color = NULLIF($3, '') WHERE id = $1`, t.ID, t.Name, t.Color)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteType(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM supplier_types WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func orderSortOrder(sortBy, dir string) string {
	d := sortDir(dir)
	switch sortBy {
	case "number":
		return "number " + d
	case "status":
		return "status " + d
	case "date":
		return "order_date " + d
	default:
		return "order_date DESC"
	}
}

func sortDir(dir string) string {
	if dir == "desc" {
		return "DESC"
	}
	return "ASC"
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
