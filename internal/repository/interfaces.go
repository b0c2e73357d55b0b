package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/rfmelo/corretora/internal/domain"
)

// ClientRepository defines the persistence operations the import
// pipeline needs for clients. Lookups by natural key return
// domain.ErrNotFound when no record matches.
type ClientRepository interface {
	GetByCPFCNPJ(ctx context.Context, digits string) (domain.Client, error)
	Create(ctx context.Context, client domain.Client) (domain.Client, error)
	Update(ctx context.Context, client domain.Client) (domain.Client, error)
}

// PolicyRepository defines the persistence operations for policies.
type PolicyRepository interface {
	GetByNumber(ctx context.Context, policyNumber string) (domain.Policy, error)
	Create(ctx context.Context, policy domain.Policy) (domain.Policy, error)
	Update(ctx context.Context, policy domain.Policy) (domain.Policy, error)
}

// CommissionRepository defines the persistence operations for
// commissions. There is no lookup: commissions are always inserted.
type CommissionRepository interface {
	Create(ctx context.Context, commission domain.Commission) (domain.Commission, error)
}

// ImportJobRepository stores the audit record written once per batch.
type ImportJobRepository interface {
	Create(ctx context.Context, job domain.ImportJob) (domain.ImportJob, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.ImportJob, error)
}
