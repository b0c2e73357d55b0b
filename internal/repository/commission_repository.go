package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rfmelo/corretora/internal/domain"
)

type commissionRepository struct {
	pool *pgxpool.Pool
}

// NewCommissionRepository wires a repository backed by pgxpool.
func NewCommissionRepository(pool *pgxpool.Pool) CommissionRepository {
	return &commissionRepository{pool: pool}
}

func (r *commissionRepository) Create(ctx context.Context, commission domain.Commission) (domain.Commission, error) {
	if r.pool == nil {
		return domain.Commission{}, fmt.Errorf("commission repository not initialized")
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO commissions (id, policy_id, gross_amount, rate, net_amount, payment_date, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		commission.ID,
		commission.PolicyID,
		commission.GrossAmount,
		commission.Rate,
		commission.NetAmount,
		commission.PaymentDate,
		commission.Notes,
		commission.CreatedAt,
	)
	if err != nil {
		return domain.Commission{}, fmt.Errorf("failed to create commission: %w", err)
	}

	return commission, nil
}
