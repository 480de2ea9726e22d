package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grievance-service/internal/domain"
)

const departmentColumns = `id, name, description, head_of_department, contact_email, contact_phone, created_at, updated_at`

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	if dept.ID == "" {
		dept.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO departments (id, name, description, head_of_department, contact_email, contact_phone)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at, updated_at`
	return mapPgError(r.pool.QueryRow(ctx, query,
		dept.ID,
		dept.Name,
		dept.Description,
		dept.HeadOfDepartment,
		dept.ContactEmail,
		dept.ContactPhone,
	).Scan(&dept.CreatedAt, &dept.UpdatedAt))
}

func (r *departmentRepository) Update(ctx context.Context, dept *domain.Department) error {
	const query = `
        UPDATE departments SET name=$1, description=$2, head_of_department=$3, contact_email=$4, contact_phone=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`
	return mapPgError(r.pool.QueryRow(ctx, query,
		dept.Name,
		dept.Description,
		dept.HeadOfDepartment,
		dept.ContactEmail,
		dept.ContactPhone,
		dept.ID,
	).Scan(&dept.UpdatedAt))
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+departmentColumns+` FROM departments WHERE id=$1`, id)
	dept, err := scanDepartment(row)
	if err != nil {
		return nil, mapPgError(err)
	}
	return dept, nil
}

func (r *departmentRepository) List(ctx context.Context, search string) ([]domain.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments`
	args := []any{}
	if search != "" {
		query += ` WHERE strpos(LOWER(name), LOWER($1)) > 0`
		args = append(args, search)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Department{}
	for rows.Next() {
		dept, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *dept)
	}
	return result, rows.Err()
}

func (r *departmentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM departments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDepartment(row pgx.Row) (*domain.Department, error) {
	var dept domain.Department
	if err := row.Scan(
		&dept.ID,
		&dept.Name,
		&dept.Description,
		&dept.HeadOfDepartment,
		&dept.ContactEmail,
		&dept.ContactPhone,
		&dept.CreatedAt,
		&dept.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &dept, nil
}
