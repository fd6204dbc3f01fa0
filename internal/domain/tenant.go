package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus is the stored lifecycle state of a tenant. The derived
// "expired" sub-state is never stored; it is evaluated lazily at gate time.
type SubscriptionStatus string

const (
	SubscriptionPending   SubscriptionStatus = "pending"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionSuspended SubscriptionStatus = "suspended"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// ValidSubscriptionStatus reports whether s belongs to the closed status set.
func ValidSubscriptionStatus(s string) bool {
	switch SubscriptionStatus(s) {
	case SubscriptionPending, SubscriptionActive, SubscriptionSuspended, SubscriptionCancelled:
		return true
	}
	return false
}

// Caller-facing rejection reasons produced by subscription evaluation.
const (
	ReasonAwaitingApproval = "awaiting approval"
	ReasonSuspended        = "suspended"
	ReasonCancelled        = "cancelled"
	ReasonExpired          = "subscription expired"
)

// Tenant is the billing and authorization boundary. The tenant row doubles
// as the owner's login account.
type Tenant struct {
	TenantID             uuid.UUID          `json:"tenant_id" db:"tenant_id"`
	OwnerName            string             `json:"owner_name" db:"owner_name"`
	CompanyName          string             `json:"company_name" db:"company_name"`
	CUI                  string             `json:"cui" db:"cui"`
	ServiceName          string             `json:"service_name" db:"service_name"`
	Address              string             `json:"address" db:"address"`
	Phone                string             `json:"phone" db:"phone"`
	Email                string             `json:"email" db:"email"`
	PasswordHash         string             `json:"-" db:"password_hash"`
	SubscriptionStatus   SubscriptionStatus `json:"subscription_status" db:"subscription_status"`
	SubscriptionPlan     string             `json:"subscription_plan" db:"subscription_plan"`
	SubscriptionPrice    float64            `json:"subscription_price" db:"subscription_price"`
	SubscriptionEndDate  *time.Time         `json:"subscription_end_date,omitempty" db:"subscription_end_date"`
	HasGracePeriod       bool               `json:"has_grace_period" db:"has_grace_period"`
	GracePeriodDays      *int               `json:"grace_period_days,omitempty" db:"grace_period_days"`
	GraceExtendedAt      *time.Time         `json:"grace_period_extended_at,omitempty" db:"grace_period_extended_at"`
	HasPaymentNotice     bool               `json:"has_payment_notification" db:"has_payment_notification"`
	IsTrial              bool               `json:"is_trial" db:"is_trial"`
	TrialStartedAt       *time.Time         `json:"trial_started_at,omitempty" db:"trial_started_at"`
	LastPaymentDate      *time.Time         `json:"last_payment_date,omitempty" db:"last_payment_date"`
	LastPaymentAmount    *float64           `json:"last_payment_amount,omitempty" db:"last_payment_amount"`
	ActivatedAt          *time.Time         `json:"activated_at,omitempty" db:"activated_at"`
	CreatedAt            time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at" db:"updated_at"`
}

// SubscriptionDecision is derived per evaluation and never cached: tenant
// state can change between requests.
type SubscriptionDecision struct {
	Allowed      bool   `json:"allowed"`
	Reason       string `json:"reason,omitempty"`
	IsExpired    bool   `json:"is_expired"`
	GraceApplies bool   `json:"grace_applies"`
}

// TrialDays is the trial window granted on self-registration.
const TrialDays = 14
