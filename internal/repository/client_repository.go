package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rfmelo/corretora/internal/domain"
)

type clientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository wires a repository backed by pgxpool.
func NewClientRepository(pool *pgxpool.Pool) ClientRepository {
	return &clientRepository{pool: pool}
}

func (r *clientRepository) GetByCPFCNPJ(ctx context.Context, digits string) (domain.Client, error) {
	if r.pool == nil {
		return domain.Client{}, fmt.Errorf("client repository not initialized")
	}

	row := r.pool.QueryRow(
		ctx,
		`SELECT id, owner_user_id, name, cpf_cnpj, kind, email, phone, birth_date, address, active, created_at, updated_at
		 FROM clients
		 WHERE cpf_cnpj = $1`,
		digits,
	)

	client, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Client{}, domain.ErrNotFound
		}
		return domain.Client{}, fmt.Errorf("failed to get client by cpf_cnpj: %w", err)
	}
	return client, nil
}

func (r *clientRepository) Create(ctx context.Context, client domain.Client) (domain.Client, error) {
	if r.pool == nil {
		return domain.Client{}, fmt.Errorf("client repository not initialized")
	}

	addressJSON, err := json.Marshal(client.Address)
	if err != nil {
		return domain.Client{}, fmt.Errorf("failed to marshal address: %w", err)
	}

	_, err = r.pool.Exec(
		ctx,
		`INSERT INTO clients (id, owner_user_id, name, cpf_cnpj, kind, email, phone, birth_date, address, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		client.ID,
		client.OwnerUserID,
		client.Name,
		client.CPFCNPJ,
		string(client.Kind),
		client.Email,
		client.Phone,
		client.BirthDate,
		addressJSON,
		client.Active,
		client.CreatedAt,
		client.UpdatedAt,
	)
	if err != nil {
		return domain.Client{}, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

func (r *clientRepository) Update(ctx context.Context, client domain.Client) (domain.Client, error) {
	if r.pool == nil {
		return domain.Client{}, fmt.Errorf("client repository not initialized")
	}

	addressJSON, err := json.Marshal(client.Address)
	if err != nil {
		return domain.Client{}, fmt.Errorf("failed to marshal address: %w", err)
	}

	tag, err := r.pool.Exec(
		ctx,
		`UPDATE clients
		 SET name = $2, kind = $3, email = $4, phone = $5, birth_date = $6, address = $7, active = $8, updated_at = $9
		 WHERE id = $1`,
		client.ID,
		client.Name,
		string(client.Kind),
		client.Email,
		client.Phone,
		client.BirthDate,
		addressJSON,
		client.Active,
		client.UpdatedAt,
	)
	if err != nil {
		return domain.Client{}, fmt.Errorf("failed to update client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Client{}, domain.ErrNotFound
	}

	return client, nil
}

func scanClient(row pgx.Row) (domain.Client, error) {
	var (
		client      domain.Client
		kind        string
		birthDate   pgtype.Date
		addressJSON []byte
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)

	if err := row.Scan(
		&client.ID,
		&client.OwnerUserID,
		&client.Name,
		&client.CPFCNPJ,
		&kind,
		&client.Email,
		&client.Phone,
		&birthDate,
		&addressJSON,
		&client.Active,
		&createdAt,
		&updatedAt,
	); err != nil {
		return domain.Client{}, err
	}

	client.Kind = domain.PersonKind(kind)
	if birthDate.Valid {
		value := birthDate.Time
		client.BirthDate = &value
	}
	if len(addressJSON) > 0 {
		if err := json.Unmarshal(addressJSON, &client.Address); err != nil {
			return domain.Client{}, fmt.Errorf("failed to unmarshal address: %w", err)
		}
	}
	if createdAt.Valid {
		client.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		client.UpdatedAt = updatedAt.Time
	}

	return client, nil
}
