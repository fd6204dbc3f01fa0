package domain

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the signed, time-bounded assertion replayed on every request.
// TenantID is absent for platform admins; Role and LocationID are present
// for employees only. Immutable once issued and not revocable before expiry.
type Claims struct {
	jwt.RegisteredClaims
	UserID     uuid.UUID     `json:"user_id"`
	UserType   PrincipalKind `json:"user_type"`
	TenantID   *uuid.UUID    `json:"tenant_id,omitempty"`
	Role       string        `json:"role,omitempty"`
	LocationID *uuid.UUID    `json:"location_id,omitempty"`
	Email      string        `json:"email"`
}

// FromPrincipal builds the claim set for a freshly authenticated principal.
// Expiry is stamped by the token codec at issue time.
func FromPrincipal(p *Principal) Claims {
	return Claims{
		UserID:     p.ID,
		UserType:   p.Kind,
		TenantID:   p.TenantID,
		Role:       p.Role,
		LocationID: p.LocationID,
		Email:      p.Email,
	}
}

// Principal reconstructs the resolved principal carried by the claims.
func (c *Claims) Principal() *Principal {
	return &Principal{
		Kind:       c.UserType,
		ID:         c.UserID,
		TenantID:   c.TenantID,
		Role:       c.Role,
		LocationID: c.LocationID,
		Email:      c.Email,
	}
}
