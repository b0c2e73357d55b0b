package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rfmelo/corretora/internal/domain"
	"github.com/rfmelo/corretora/internal/repository"
)

// Action is the write decision made for one reconciled row.
type Action string

const (
	ActionInserted Action = "inserted"
	ActionUpdated  Action = "updated"
)

// Engine reconciles validated rows against existing records: it
// resolves natural-key references, then decides insert vs update and
// performs exactly one write. Failures leave storage untouched.
type Engine struct {
	clients     repository.ClientRepository
	policies    repository.PolicyRepository
	commissions repository.CommissionRepository
}

// NewEngine creates a reconciliation engine over the three stores.
func NewEngine(
	clients repository.ClientRepository,
	policies repository.PolicyRepository,
	commissions repository.CommissionRepository,
) *Engine {
	return &Engine{
		clients:     clients,
		policies:    policies,
		commissions: commissions,
	}
}

// Reconcile dispatches one valid mapped record by entity type. The
// caller identity stamps ownership on inserted clients.
func (e *Engine) Reconcile(ctx context.Context, cfg EntityTypeConfig, record map[string]string, userID uuid.UUID) (Action, error) {
	switch cfg.Key {
	case EntityTypeClients:
		return e.reconcileClient(ctx, record, userID)
	case EntityTypePolicies:
		return e.reconcilePolicy(ctx, record)
	case EntityTypeCommissions:
		return e.reconcileCommission(ctx, record)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownEntityType, cfg.Key)
	}
}

func (e *Engine) reconcileClient(ctx context.Context, record map[string]string, userID uuid.UUID) (Action, error) {
	digits := domain.NormalizeCPFCNPJ(record[FieldCPFCNPJ])

	existing, err := e.clients.GetByCPFCNPJ(ctx, digits)
	switch {
	case err == nil:
		applyClientFields(&existing, record)
		existing.UpdatedAt = time.Now()
		if _, err := e.clients.Update(ctx, existing); err != nil {
			return "", fmt.Errorf("failed to update client %s: %w", digits, err)
		}
		return ActionUpdated, nil
	case errors.Is(err, domain.ErrNotFound):
		client := domain.NewClient(userID, record[FieldName], digits)
		applyClientFields(&client, record)
		if _, err := e.clients.Create(ctx, client); err != nil {
			return "", fmt.Errorf("failed to insert client %s: %w", digits, err)
		}
		return ActionInserted, nil
	default:
		return "", fmt.Errorf("failed to look up client %s: %w", digits, err)
	}
}

// applyClientFields copies present record values onto the client.
// Absent columns leave existing values alone; the person kind always
// follows the document length.
func applyClientFields(client *domain.Client, record map[string]string) {
	if value := record[FieldName]; value != "" {
		client.Name = value
	}
	client.Kind = domain.KindFromDocument(client.CPFCNPJ)
	if value := record[FieldEmail]; value != "" {
		client.Email = value
	}
	if value := record[FieldPhone]; value != "" {
		client.Phone = value
	}
	if value := record[FieldBirthDate]; value != "" {
		if parsed, err := ParseDate(value); err == nil {
			client.BirthDate = &parsed
		}
	}
	if value := record[FieldAddressStreet]; value != "" {
		client.Address.Street = value
	}
	if value := record[FieldAddressNumber]; value != "" {
		client.Address.Number = value
	}
	if value := record[FieldAddressComplement]; value != "" {
		client.Address.Complement = value
	}
	if value := record[FieldAddressDistrict]; value != "" {
		client.Address.District = value
	}
	if value := record[FieldAddressCity]; value != "" {
		client.Address.City = value
	}
	if value := record[FieldAddressState]; value != "" {
		client.Address.State = value
	}
	if value := record[FieldAddressZip]; value != "" {
		client.Address.Zip = value
	}
}

func (e *Engine) reconcilePolicy(ctx context.Context, record map[string]string) (Action, error) {
	clientDoc := record[FieldClientCPFCNPJ]
	client, err := e.clients.GetByCPFCNPJ(ctx, domain.NormalizeCPFCNPJ(clientDoc))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", &ReferenceError{Message: fmt.Sprintf("Cliente não encontrado: %s", clientDoc)}
		}
		return "", fmt.Errorf("failed to look up client %s: %w", clientDoc, err)
	}

	number := record[FieldPolicyNumber]
	existing, err := e.policies.GetByNumber(ctx, number)
	switch {
	case err == nil:
		applyPolicyFields(&existing, record)
		existing.UpdatedAt = time.Now()
		if _, err := e.policies.Update(ctx, existing); err != nil {
			return "", fmt.Errorf("failed to update policy %s: %w", number, err)
		}
		return ActionUpdated, nil
	case errors.Is(err, domain.ErrNotFound):
		policy := domain.NewPolicy(client.ID, number, record[FieldInsurer])
		applyPolicyFields(&policy, record)
		if _, err := e.policies.Create(ctx, policy); err != nil {
			return "", fmt.Errorf("failed to insert policy %s: %w", number, err)
		}
		return ActionInserted, nil
	default:
		return "", fmt.Errorf("failed to look up policy %s: %w", number, err)
	}
}

// applyPolicyFields copies the commercial terms and dates present in
// the record onto the policy.
func applyPolicyFields(policy *domain.Policy, record map[string]string) {
	if value := record[FieldInsurer]; value != "" {
		policy.Insurer = value
	}
	if value := record[FieldProduct]; value != "" {
		policy.Product = value
	}
	if value := record[FieldLineOfBusiness]; value != "" {
		policy.LineOfBusiness = value
	}
	if value := record[FieldStartDate]; value != "" {
		if parsed, err := ParseDate(value); err == nil {
			policy.StartDate = &parsed
		}
	}
	if value := record[FieldEndDate]; value != "" {
		if parsed, err := ParseDate(value); err == nil {
			policy.EndDate = &parsed
		}
	}
	if value := record[FieldPremiumAmount]; value != "" {
		if amount, err := ParseAmount(value); err == nil {
			policy.PremiumAmount = amount
		}
	}
	if value := record[FieldCommissionRate]; value != "" {
		if rate, err := ParseAmount(value); err == nil {
			policy.CommissionRate = rate
		}
	}
	if value := record[FieldPaymentMethod]; value != "" {
		policy.PaymentMethod = value
	}
}

func (e *Engine) reconcileCommission(ctx context.Context, record map[string]string) (Action, error) {
	number := record[FieldPolicyNumber]
	policy, err := e.policies.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", &ReferenceError{Message: fmt.Sprintf("Apólice não encontrada: %s", number)}
		}
		return "", fmt.Errorf("failed to look up policy %s: %w", number, err)
	}

	gross, err := ParseAmount(record[FieldGrossAmount])
	if err != nil {
		return "", fmt.Errorf("failed to parse gross amount: %w", err)
	}

	commission := domain.NewCommission(policy.ID, gross)
	if value := record[FieldRate]; value != "" {
		if rate, parseErr := ParseAmount(value); parseErr == nil {
			commission.Rate = &rate
		}
	}
	if value := record[FieldNetAmount]; value != "" {
		if net, parseErr := ParseAmount(value); parseErr == nil {
			commission.NetAmount = &net
		}
	}
	if value := record[FieldPaymentDate]; value != "" {
		if paid, parseErr := ParseDate(value); parseErr == nil {
			commission.PaymentDate = &paid
		}
	}
	commission.Notes = record[FieldNotes]

	// Commissions never merge with existing records: always insert.
	if _, err := e.commissions.Create(ctx, commission); err != nil {
		return "", fmt.Errorf("failed to insert commission for policy %s: %w", number, err)
	}
	return ActionInserted, nil
}
