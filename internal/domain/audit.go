package domain

import (
	"time"

	"github.com/google/uuid"
)

// Audit event levels.
const (
	AuditInfo    = "info"
	AuditWarning = "warning"
	AuditError   = "error"
)

// Audit event categories.
const (
	AuditCategoryAuth         = "auth"
	AuditCategoryAuthz        = "authz"
	AuditCategorySubscription = "subscription"
	AuditCategoryPayment      = "payment"
	AuditCategorySettings     = "settings"
)

// AuditEvent is one append-only record of a security-relevant decision:
// every login attempt and every authorization rejection produces one.
type AuditEvent struct {
	LogID     uuid.UUID         `json:"log_id" db:"log_id"`
	Level     string            `json:"level" db:"level"`
	Category  string            `json:"category" db:"category"`
	Message   string            `json:"message" db:"message"`
	UserID    *uuid.UUID        `json:"user_id,omitempty" db:"user_id"`
	UserEmail string            `json:"user_email,omitempty" db:"user_email"`
	TenantID  *uuid.UUID        `json:"tenant_id,omitempty" db:"tenant_id"`
	IPAddress string            `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent string            `json:"user_agent,omitempty" db:"user_agent"`
	Metadata  map[string]string `json:"metadata,omitempty" db:"-"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}
