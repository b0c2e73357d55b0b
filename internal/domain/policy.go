package domain

import (
	"time"

	"github.com/google/uuid"
)

// PolicyStatus is the lifecycle state of a policy.
type PolicyStatus string

const (
	PolicyStatusActive    PolicyStatus = "active"
	PolicyStatusExpired   PolicyStatus = "expired"
	PolicyStatusCancelled PolicyStatus = "cancelled"
)

// Policy represents an insurance policy (apólice) held by a client.
type Policy struct {
	ID             uuid.UUID    `json:"id"`
	ClientID       uuid.UUID    `json:"client_id"`
	PolicyNumber   string       `json:"policy_number"`
	Insurer        string       `json:"insurer"`
	Product        string       `json:"product"`
	LineOfBusiness string       `json:"line_of_business"`
	StartDate      *time.Time   `json:"start_date,omitempty"`
	EndDate        *time.Time   `json:"end_date,omitempty"`
	PremiumAmount  float64      `json:"premium_amount"`
	CommissionRate float64      `json:"commission_rate"`
	PaymentMethod  string       `json:"payment_method"`
	Status         PolicyStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// NewPolicy creates a policy for a client with default status and a
// zero premium until the imported terms are applied.
func NewPolicy(clientID uuid.UUID, policyNumber, insurer string) Policy {
	now := time.Now()
	return Policy{
		ID:           uuid.New(),
		ClientID:     clientID,
		PolicyNumber: policyNumber,
		Insurer:      insurer,
		Status:       PolicyStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
