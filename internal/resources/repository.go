package resources

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

// Repository is the data access collaborator for the resources module.
type Repository interface {
	ListEquipmentTypes(ctx context.Context, filters shared.ListFilters) ([]EquipmentType, int, error)
	GetEquipmentType(ctx context.Context, id int64) (EquipmentType, error)
	CreateEquipmentType(ctx context.Context, t EquipmentType) (EquipmentType, error)
	UpdateEquipmentType(ctx context.Context, t EquipmentType) error
	DeactivateEquipmentType(ctx context.Context, id, actorID int64) error

	ListLocations(ctx context.Context, filters shared.ListFilters) ([]Location, int, error)
	GetLocation(ctx context.Context, id int64) (Location, error)
	CreateLocation(ctx context.Context, l Location) (Location, error)
	UpdateLocation(ctx context.Context, l Location) error
	DeleteLocation(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Repository backed by PostgreSQL.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) ListEquipmentTypes(ctx context.Context, filters shared.ListFilters) ([]EquipmentType, int, error) {
	query := `SELECT id, name, COALESCE(description, ''), active, created_at, updated_at, updated_by FROM equipment_types WHERE active`
	countQuery := `SELECT COUNT(*) FROM equipment_types WHERE active`
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

	var types []EquipmentType
	for rows.Next() {
		var t EquipmentType
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Active, &t.CreatedAt, &t.UpdatedAt, &t.UpdatedBy); err != nil {
			return nil, 0, err
		}
		types = append(types, t)
	}
	return types, total, rows.Err()
}

func (r *repository) GetEquipmentType(ctx context.Context, id int64) (EquipmentType, error) {
	var t EquipmentType
	err := r.pool.QueryRow(ctx, `SELECT id, name, COALESCE(description, ''), active, created_at, updated_at, updated_by FROM equipment_types WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Description, &t.Active, &t.CreatedAt, &t.UpdatedAt, &t.UpdatedBy)
	if err != nil {
		return EquipmentType{}, mapPgError(err)
	}
	return t, nil
}

func (r *repository) CreateEquipmentType(ctx context.Context, t EquipmentType) (EquipmentType, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO equipment_types (name, description, active, created_at, updated_at, updated_by)
		VALUES ($1, NULLIF($2, ''), TRUE, $3, $3, $4)
		RETURNING id`,
		t.Name, t.Description, now, t.UpdatedBy).
		Scan(&t.ID)
	if err != nil {
		return EquipmentType{}, mapPgError(err)
	}
	t.Active = true
	t.CreatedAt = now
	t.UpdatedAt = now
	return t, nil
}

func (r *repository) UpdateEquipmentType(ctx context.Context, t EquipmentType) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE equipment_types SET name = $2, description = NULLIF($3, ''), updated_at = $4, updated_by = $5
		WHERE id = $1 AND active`,
		t.ID, t.Name, t.Description, time.Now(), t.UpdatedBy)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeactivateEquipmentType(ctx context.Context, id, actorID int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE equipment_types SET active = FALSE, updated_at = $2, updated_by = $3 WHERE id = $1 AND active`, id, time.Now(), actorID)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListLocations(ctx context.Context, filters shared.ListFilters) ([]Location, int, error) {
	query := `SELECT id, code, name, COALESCE(description, '') FROM locations WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM locations WHERE 1=1`
	args := []any{}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		cond := ` AND (code ILIKE $1 OR name ILIKE $1)`
		query += cond
		countQuery += cond
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY code ` + sortDir(filters.SortDir)
	argCount := len(args)
	query += ` LIMIT $` + strconv.Itoa(argCount+1) + ` OFFSET $` + strconv.Itoa(argCount+2)
	args = append(args, filters.Limit, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var locations []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Code, &l.Name, &l.Description); err != nil {
			return nil, 0, err
		}
		locations = append(locations, l)
	}
	return locations, total, rows.Err()
}

func (r *repository) GetLocation(ctx context.Context, id int64) (Location, error) {
	var l Location
	err := r.pool.QueryRow(ctx, `SELECT id, code, name, COALESCE(description, '') FROM locations WHERE id = $1`, id).
		Scan(&l.ID, &l.Code, &l.Name, &l.Description)
	if err != nil {
		return Location{}, mapPgError(err)
	}
	return l, nil
}

func (r *repository) CreateLocation(ctx context.Context, l Location) (Location, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO locations (code, name, description) VALUES ($1, $2, NULLIF($3, '')) RETURNING id`, l.Code, l.Name, l.Description).Scan(&l.ID)
	if err != nil {
		return Location{}, mapPgError(err)
	}
	return l, nil
}

func (r *repository) UpdateLocation(ctx context.Context, l Location) error {
	tag, err := r.pool.Exec(ctx, `UPDATE locations SET code = $2, name = $3, description = NULLIF($4, '') WHERE id = $1`, l.ID, l.Code, l.Name, l.Description)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteLocation(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
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
