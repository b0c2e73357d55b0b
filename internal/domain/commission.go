package domain

import (
	"time"

	"github.com/google/uuid"
)

// Commission is a commission record tied to a policy. Commissions are
// append-only: imports never merge them with existing records.
type Commission struct {
	ID          uuid.UUID  `json:"id"`
	PolicyID    uuid.UUID  `json:"policy_id"`
	GrossAmount float64    `json:"gross_amount"`
	Rate        *float64   `json:"rate,omitempty"`
	NetAmount   *float64   `json:"net_amount,omitempty"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`
	Notes       string     `json:"notes"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewCommission creates a commission for a policy.
func NewCommission(policyID uuid.UUID, grossAmount float64) Commission {
	return Commission{
		ID:          uuid.New(),
		PolicyID:    policyID,
		GrossAmount: grossAmount,
		CreatedAt:   time.Now(),
	}
}
