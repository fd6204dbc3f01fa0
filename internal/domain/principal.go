package domain

import (
	"time"

	"github.com/google/uuid"
)

// PrincipalKind tags the closed set of authenticable identities. Lookup
// order across kinds is significant: admin, then tenant owner, then
// employee. An email registered under two kinds resolves to the
// higher-priority one.
type PrincipalKind string

const (
	KindAdmin       PrincipalKind = "admin"
	KindTenantOwner PrincipalKind = "tenant_owner"
	KindEmployee    PrincipalKind = "employee"
)

// Principal is the tagged variant over the three account kinds. TenantID is
// nil for platform admins; Role and LocationID are set for employees only.
type Principal struct {
	Kind         PrincipalKind
	ID           uuid.UUID
	TenantID     *uuid.UUID
	Role         string
	LocationID   *uuid.UUID
	Email        string
	DisplayName  string
	PasswordHash string
}

// AdminUser is a platform administrator account. No tenant affiliation;
// implicitly holds every capability.
type AdminUser struct {
	AdminID      uuid.UUID `json:"admin_id" db:"admin_id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Principal converts the admin record to its principal form.
func (a *AdminUser) Principal() *Principal {
	return &Principal{
		Kind:         KindAdmin,
		ID:           a.AdminID,
		Email:        a.Email,
		DisplayName:  a.Name,
		PasswordHash: a.PasswordHash,
	}
}

// OwnerPrincipal converts the tenant record to its owner-account principal
// form. The owner's id is the tenant id.
func (t *Tenant) OwnerPrincipal() *Principal {
	id := t.TenantID
	return &Principal{
		Kind:         KindTenantOwner,
		ID:           t.TenantID,
		TenantID:     &id,
		Email:        t.Email,
		DisplayName:  t.OwnerName,
		PasswordHash: t.PasswordHash,
	}
}

// Employee belongs to exactly one tenant and one location and holds a named
// role (system or tenant-custom).
type Employee struct {
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	TenantID     uuid.UUID `json:"tenant_id" db:"tenant_id"`
	LocationID   uuid.UUID `json:"location_id" db:"location_id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Principal converts the employee record to its principal form.
func (e *Employee) Principal() *Principal {
	tenantID := e.TenantID
	locationID := e.LocationID
	return &Principal{
		Kind:         KindEmployee,
		ID:           e.UserID,
		TenantID:     &tenantID,
		Role:         e.Role,
		LocationID:   &locationID,
		Email:        e.Email,
		DisplayName:  e.Name,
		PasswordHash: e.PasswordHash,
	}
}
