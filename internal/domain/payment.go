package domain

import (
	"time"

	"github.com/google/uuid"
)

// Payment records one processed subscription payment.
type Payment struct {
	PaymentID     uuid.UUID `json:"payment_id" db:"payment_id"`
	InvoiceNumber string    `json:"invoice_number" db:"invoice_number"`
	TenantID      uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Plan          string    `json:"plan" db:"plan"`
	Months        int       `json:"months" db:"months"`
	Amount        float64   `json:"amount" db:"amount"`
	Currency      string    `json:"currency" db:"currency"`
	Status        string    `json:"status" db:"status"`
	PaymentMethod string    `json:"payment_method" db:"payment_method"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	ProcessedAt   time.Time `json:"processed_at" db:"processed_at"`
}
