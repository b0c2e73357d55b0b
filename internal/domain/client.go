package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PersonKind distinguishes individuals (CPF, 11 digits) from
// organizations (CNPJ, 14 digits).
type PersonKind string

const (
	PersonKindIndividual PersonKind = "PF"
	PersonKindCompany    PersonKind = "PJ"
)

// Address is the embedded address sub-object on a client.
type Address struct {
	Street     string `json:"street,omitempty"`
	Number     string `json:"number,omitempty"`
	Complement string `json:"complement,omitempty"`
	District   string `json:"district,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Zip        string `json:"zip,omitempty"`
}

// Client represents a brokerage client.
type Client struct {
	ID          uuid.UUID  `json:"id"`
	OwnerUserID uuid.UUID  `json:"owner_user_id"`
	Name        string     `json:"name"`
	CPFCNPJ     string     `json:"cpf_cnpj"` // digits only
	Kind        PersonKind `json:"kind"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	Address     Address    `json:"address"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewClient creates an active client owned by the given user. The tax
// document is normalized to digits and the person kind derived from it.
func NewClient(ownerUserID uuid.UUID, name, document string) Client {
	now := time.Now()
	digits := NormalizeCPFCNPJ(document)
	return Client{
		ID:          uuid.New(),
		OwnerUserID: ownerUserID,
		Name:        name,
		CPFCNPJ:     digits,
		Kind:        KindFromDocument(digits),
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NormalizeCPFCNPJ strips everything but digits from a tax document.
func NormalizeCPFCNPJ(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// KindFromDocument derives the person kind from a normalized tax
// document: 14 digits is a CNPJ (company), anything else a CPF.
func KindFromDocument(digits string) PersonKind {
	if len(digits) == 14 {
		return PersonKindCompany
	}
	return PersonKindIndividual
}
