package parts

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian/internal/platform/db"
	"github.com/meridian-erp/meridian/internal/shared"
)

// Repository is the data access collaborator for the parts module. One method
// per entity per verb; every call returns either a value or an error. WithTx
// runs the callback against a transactional copy of the repository so the
// service can combine writes that must land together.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error

	ListParts(ctx context.Context, filters shared.ListFilters) ([]Part, int, error)
	GetPart(ctx context.Context, id int64) (Part, error)
	CreatePart(ctx context.Context, p Part) (Part, error)
	UpdatePart(ctx context.Context, p Part) error
	DeletePart(ctx context.Context, id int64) error
	DeleteSearchDocument(ctx context.Context, entity string, id int64) error

	ListGroups(ctx context.Context, filters shared.ListFilters) ([]PartGroup, int, error)
	GetGroup(ctx context.Context, id int64) (PartGroup, error)
	CreateGroup(ctx context.Context, g PartGroup) (PartGroup, error)
	UpdateGroup(ctx context.Context, g PartGroup) error
	DeleteGroup(ctx context.Context, id int64) error

	ListUnits(ctx context.Context, filters shared.ListFilters) ([]UnitOfMeasure, int, error)
	GetUnit(ctx context.Context, id int64) (UnitOfMeasure, error)
	CreateUnit(ctx context.Context, u UnitOfMeasure) (UnitOfMeasure, error)
	UpdateUnit(ctx context.Context, u UnitOfMeasure) error
	DeleteUnit(ctx context.Context, id int64) error
}

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository returns a Repository backed by PostgreSQL.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) ListParts(ctx context.Context, filters shared.ListFilters) ([]Part, int, error) {
	query := `SELECT id, code, name, description, part_type, replenishment, unit_of_measure, group_id, unit_cost, lead_time_days, active, blocked, created_at, updated_at, updated_by FROM parts WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM parts WHERE 1=1`
	args := []any{}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		cond := ` AND (name ILIKE $1 OR code ILIKE $1)`
		query += cond
		countQuery += cond
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY ` + partSortOrder(filters.SortBy, filters.SortDir)
	argCount := len(args)
	query += ` LIMIT $` + strconv.Itoa(argCount+1) + ` OFFSET $` + strconv.Itoa(argCount+2)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var parts []Part
	for rows.Next() {
		var p Part
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.PartType, &p.Replenishment, &p.UnitOfMeasure, &p.GroupID, &p.UnitCost, &p.LeadTimeDays, &p.Active, &p.Blocked, &p.CreatedAt, &p.UpdatedAt, &p.UpdatedBy); err != nil {
			return nil, 0, err
		}
		parts = append(parts, p)
	}
	return parts, total, rows.Err()
}

func (r *repository) GetPart(ctx context.Context, id int64) (Part, error) {
	var p Part
	err := r.db.QueryRow(ctx, `SELECT id, code, name, description, part_type, replenishment, unit_of_measure, group_id, unit_cost, lead_time_days, active, blocked, created_at, updated_at, updated_by FROM parts WHERE id = $1`, id).
		Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.PartType, &p.Replenishment, &p.UnitOfMeasure, &p.GroupID, &p.UnitCost, &p.LeadTimeDays, &p.Active, &p.Blocked, &p.CreatedAt, &p.UpdatedAt, &p.UpdatedBy)
	if err != nil {
		return Part{}, mapPgError(err)
	}
	return p, nil
}

func (r *repository) CreatePart(ctx context.Context, p Part) (Part, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx, `
		INSERT INTO parts (code, name, description, part_type, replenishment, unit_of_measure, group_id, unit_cost, lead_time_days, active, blocked, created_at, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, 0), $8, $9, $10, $11, $12, $12, $13)
		RETURNING id`,
		p.Code, p.Name, p.Description, p.PartType, p.Replenishment, p.UnitOfMeasure, p.GroupID, p.UnitCost, p.LeadTimeDays, p.Active, p.Blocked, now, p.UpdatedBy).
		Scan(&p.ID)
	if err != nil {
		return Part{}, mapPgError(err)
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

func (r *repository) UpdatePart(ctx context.Context, p Part) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE parts SET code = $2, name = $3, description = $4, part_type = $5, replenishment = $6, unit_of_measure = $7, group_id = NULLIF($8, 0), unit_cost = $9, lead_time_days = $10, active = $11, blocked = $12, updated_at = $13, updated_by = $14
		WHERE id = $1`,
		p.ID, p.Code, p.Name, p.Description, p.PartType, p.Replenishment, p.UnitOfMeasure, p.GroupID, p.UnitCost, p.LeadTimeDays, p.Active, p.Blocked, time.Now(), p.UpdatedBy)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeletePart(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM parts WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteSearchDocument drops the denormalised search row for a record. The
// row may not exist yet when the reindex job has not run, so zero rows
// affected is not an error.
func (r *repository) DeleteSearchDocument(ctx context.Context, entity string, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM search_documents WHERE entity = $1 AND entity_id = $2`, entity, id)
	return err
}

func (r *repository) ListGroups(ctx context.Context, filters shared.ListFilters) ([]PartGroup, int, error) {
	query := `SELECT id, name, description FROM part_groups WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM part_groups WHERE 1=1`
	args := []any{}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		query += ` AND name ILIKE $1`
		countQuery += ` AND name ILIKE $1`
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name ` + sortDir(filters.SortDir)
	argCount := len(args)
	query += ` LIMIT $` + strconv.Itoa(argCount+1) + ` OFFSET $` + strconv.Itoa(argCount+2)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var groups []PartGroup
	for rows.Next() {
		var g PartGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.Description); err != nil {
			return nil, 0, err
		}
		groups = append(groups, g)
	}
	return groups, total, rows.Err()
}

func (r *repository) GetGroup(ctx context.Context, id int64) (PartGroup, error) {
	var g PartGroup
	err := r.db.QueryRow(ctx, `SELECT id, name, description FROM part_groups WHERE id = $1`, id).
		Scan(&g.ID, &g.Name, &g.Description)
	if err != nil {
		return PartGroup{}, mapPgError(err)
	}
	return g, nil
}

func (r *repository) CreateGroup(ctx context.Context, g PartGroup) (PartGroup, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO part_groups (name, description) VALUES ($1, $2) RETURNING id`, g.Name, g.Description).Scan(&g.ID)
	if err != nil {
		return PartGroup{}, mapPgError(err)
	}
	return g, nil
}

func (r *repository) UpdateGroup(ctx context.Context, g PartGroup) error {
	tag, err := r.db.Exec(ctx, `UPDATE part_groups SET name = $2, description = $3 WHERE id = $1`, g.ID, g.Name, g.Description)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteGroup(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM part_groups WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListUnits(ctx context.Context, filters shared.ListFilters) ([]UnitOfMeasure, int, error) {
	query := `SELECT id, code, name FROM units_of_measure WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM units_of_measure WHERE 1=1`
	args := []any{}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		cond := ` AND (name ILIKE $1 OR code ILIKE $1)`
		query += cond
		countQuery += cond
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY code ` + sortDir(filters.SortDir)
	argCount := len(args)
	query += ` LIMIT $` + strconv.Itoa(argCount+1) + ` OFFSET $` + strconv.Itoa(argCount+2)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var units []UnitOfMeasure
	for rows.Next() {
		var u UnitOfMeasure
		if err := rows.Scan(&u.ID, &u.Code, &u.Name); err != nil {
			return nil, 0, err
		}
		units = append(units, u)
	}
	return units, total, rows.Err()
}

func (r *repository) GetUnit(ctx context.Context, id int64) (UnitOfMeasure, error) {
	var u UnitOfMeasure
	err := r.db.QueryRow(ctx, `SELECT id, code, name FROM units_of_measure WHERE id = $1`, id).
		Scan(&u.ID, &u.Code, &u.Name)
	if err != nil {
		return UnitOfMeasure{}, mapPgError(err)
	}
	return u, nil
}

func (r *repository) CreateUnit(ctx context.Context, u UnitOfMeasure) (UnitOfMeasure, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO units_of_measure (code, name) VALUES ($1, $2) RETURNING id`, u.Code, u.Name).Scan(&u.ID)
	if err != nil {
		return UnitOfMeasure{}, mapPgError(err)
	}
	return u, nil
}

func (r *repository) UpdateUnit(ctx context.Context, u UnitOfMeasure) error {
	tag, err := r.db.Exec(ctx, `UPDATE units_of_measure SET code = $2, name = $3 WHERE id = $1`, u.ID, u.Code, u.Name)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteUnit(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM units_of_measure WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func partSortOrder(sortBy, dir string) string {
	d := sortDir(dir)
	switch sortBy {
	case "code":
		return "code " + d
	case "cost":
		return "unit_cost " + d
	default:
		return "name " + d
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
