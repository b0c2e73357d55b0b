package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rfmelo/corretora/internal/domain"
)

type policyRepository struct {
	pool *pgxpool.Pool
}

// NewPolicyRepository wires a repository backed by pgxpool.
func NewPolicyRepository(pool *pgxpool.Pool) PolicyRepository {
	return &policyRepository{pool: pool}
}

func (r *policyRepository) GetByNumber(ctx context.Context, policyNumber string) (domain.Policy, error) {
	if r.pool == nil {
		return domain.Policy{}, fmt.Errorf("policy repository not initialized")
	}

	row := r.pool.QueryRow(
		ctx,
		`SELECT id, client_id, policy_number, insurer, product, line_of_business, start_date, end_date,
		        premium_amount, commission_rate, payment_method, status, created_at, updated_at
		 FROM policies
		 WHERE policy_number = $1`,
		policyNumber,
	)

	policy, err := scanPolicy(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Policy{}, domain.ErrNotFound
		}
		return domain.Policy{}, fmt.Errorf("failed to get policy by number: %w", err)
	}
	return policy, nil
}

func (r *policyRepository) Create(ctx context.Context, policy domain.Policy) (domain.Policy, error) {
	if r.pool == nil {
		return domain.Policy{}, fmt.Errorf("policy repository not initialized")
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO policies (id, client_id, policy_number, insurer, product, line_of_business, start_date, end_date,
		                       premium_amount, commission_rate, payment_method, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		policy.ID,
		policy.ClientID,
		policy.PolicyNumber,
		policy.Insurer,
		policy.Product,
		policy.LineOfBusiness,
		policy.StartDate,
		policy.EndDate,
		policy.PremiumAmount,
		policy.CommissionRate,
		policy.PaymentMethod,
		string(policy.Status),
		policy.CreatedAt,
		policy.UpdatedAt,
	)
	if err != nil {
		return domain.Policy{}, fmt.Errorf("failed to create policy: %w", err)
	}

	return policy, nil
}

func (r *policyRepository) Update(ctx context.Context, policy domain.Policy) (domain.Policy, error) {
	if r.pool == nil {
		return domain.Policy{}, fmt.Errorf("policy repository not initialized")
	}

	tag, err := r.pool.Exec(
		ctx,
		`UPDATE policies
		 SET insurer = $2, product = $3, line_of_business = $4, start_date = $5, end_date = $6,
		     premium_amount = $7, commission_rate = $8, payment_method = $9, status = $10, updated_at = $11
		 WHERE id = $1`,
		policy.ID,
		policy.Insurer,
		policy.Product,
		policy.LineOfBusiness,
		policy.StartDate,
		policy.EndDate,
		policy.PremiumAmount,
		policy.CommissionRate,
		policy.PaymentMethod,
		string(policy.Status),
		policy.UpdatedAt,
	)
	if err != nil {
		return domain.Policy{}, fmt.Errorf("failed to update policy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Policy{}, domain.ErrNotFound
	}

	return policy, nil
}

func scanPolicy(row pgx.Row) (domain.Policy, error) {
	var (
		policy    domain.Policy
		startDate pgtype.Date
		endDate   pgtype.Date
		status    string
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	if err := row.Scan(
		&policy.ID,
		&policy.ClientID,
		&policy.PolicyNumber,
		&policy.Insurer,
		&policy.Product,
		&policy.LineOfBusiness,
		&startDate,
		&endDate,
		&policy.PremiumAmount,
		&policy.CommissionRate,
		&policy.PaymentMethod,
		&status,
		&createdAt,
		&updatedAt,
	); err != nil {
		return domain.Policy{}, err
	}

	policy.Status = domain.PolicyStatus(status)
	if startDate.Valid {
		value := startDate.Time
		policy.StartDate = &value
	}
	if endDate.Valid {
		value := endDate.Time
		policy.EndDate = &value
	}
	if createdAt.Valid {
		policy.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		policy.UpdatedAt = updatedAt.Time
	}

	return policy, nil
}
