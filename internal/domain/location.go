package domain

import (
	"time"

	"github.com/google/uuid"
)

// Location is one physical service point of a tenant.
type Location struct {
	LocationID   uuid.UUID `json:"location_id" db:"location_id"`
	TenantID     uuid.UUID `json:"tenant_id" db:"tenant_id"`
	LocationName string    `json:"location_name" db:"location_name"`
	Address      string    `json:"address" db:"address"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
