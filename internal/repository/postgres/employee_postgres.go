package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fixdesk/servicedesk/internal/domain"
	"github.com/fixdesk/servicedesk/internal/repository"
)

const employeeColumns = `
	user_id, tenant_id, location_id, name, email, password_hash, role, created_at`

type employeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository creates a new PostgreSQL employee repository.
func NewEmployeeRepository(db *sqlx.DB) repository.EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	query := `
		INSERT INTO employees (user_id, tenant_id, location_id, name, email, password_hash, role, created_at)
		VALUES (:user_id, :tenant_id, :location_id, :name, :email, :password_hash, :role, :created_at)`

	_, err := r.db.NamedExecContext(ctx, query, employee)
	if err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}

	return nil
}

func (r *employeeRepository) GetByID(ctx context.Context, userID uuid.UUID) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE user_id = $1`
	return r.getOne(ctx, query, userID)
}

func (r *employeeRepository) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE email = $1`
	return r.getOne(ctx, query, email)
}

func (r *employeeRepository) GetByEmailFold(ctx context.Context, email string) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE LOWER(email) = LOWER($1)`
	return r.getOne(ctx, query, email)
}

func (r *employeeRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE tenant_id = $1 ORDER BY created_at`

	var employees []*domain.Employee
	if err := r.db.SelectContext(ctx, &employees, query, tenantID); err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	return employees, nil
}

func (r *employeeRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM employees WHERE tenant_id = $1`
	if err := r.db.GetContext(ctx, &count, query, tenantID); err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}

	return count, nil
}

func (r *employeeRepository) CountByRole(ctx context.Context, tenantID uuid.UUID, roleID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM employees WHERE tenant_id = $1 AND role = $2`
	if err := r.db.GetContext(ctx, &count, query, tenantID, roleID); err != nil {
		return 0, fmt.Errorf("failed to count employees by role: %w", err)
	}

	return count, nil
}

func (r *employeeRepository) UpdateRole(ctx context.Context, tenantID, userID uuid.UUID, roleID string) error {
	query := `UPDATE employees SET role = $3 WHERE tenant_id = $1 AND user_id = $2`
	return r.execOne(ctx, query, tenantID, userID, roleID)
}

func (r *employeeRepository) UpdateLocation(ctx context.Context, tenantID, userID, locationID uuid.UUID) error {
	query := `UPDATE employees SET location_id = $3 WHERE tenant_id = $1 AND user_id = $2`
	return r.execOne(ctx, query, tenantID, userID, locationID)
}

func (r *employeeRepository) Delete(ctx context.Context, tenantID, userID uuid.UUID) error {
	query := `DELETE FROM employees WHERE tenant_id = $1 AND user_id = $2`
	return r.execOne(ctx, query, tenantID, userID)
}

func (r *employeeRepository) getOne(ctx context.Context, query string, arg interface{}) (*domain.Employee, error) {
	var employee domain.Employee
	err := r.db.GetContext(ctx, &employee, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	return &employee, nil
}

func (r *employeeRepository) execOne(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}
