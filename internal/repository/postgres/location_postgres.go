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

type locationRepository struct {
	db *sqlx.DB
}

// NewLocationRepository creates a new PostgreSQL location repository.
func NewLocationRepository(db *sqlx.DB) repository.LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Create(ctx context.Context, location *domain.Location) error {
	query := `
		INSERT INTO locations (location_id, tenant_id, location_name, address, created_at)
		VALUES (:location_id, :tenant_id, :location_name, :address, :created_at)`

	_, err := r.db.NamedExecContext(ctx, query, location)
	if err != nil {
		return fmt.Errorf("failed to create location: %w", err)
	}

	return nil
}

func (r *locationRepository) GetByID(ctx context.Context, locationID uuid.UUID) (*domain.Location, error) {
	query := `
		SELECT location_id, tenant_id, location_name, address, created_at
		FROM locations
		WHERE location_id = $1`

	var location domain.Location
	err := r.db.GetContext(ctx, &location, query, locationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get location: %w", err)
	}

	return &location, nil
}

func (r *locationRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Location, error) {
	query := `
		SELECT location_id, tenant_id, location_name, address, created_at
		FROM locations
		WHERE tenant_id = $1
		ORDER BY created_at`

	var locations []*domain.Location
	if err := r.db.SelectContext(ctx, &locations, query, tenantID); err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}

	return locations, nil
}

func (r *locationRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM locations WHERE tenant_id = $1`
	if err := r.db.GetContext(ctx, &count, query, tenantID); err != nil {
		return 0, fmt.Errorf("failed to count locations: %w", err)
	}

	return count, nil
}
