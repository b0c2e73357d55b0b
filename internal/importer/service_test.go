package importer

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/rfmelo/corretora/internal/domain"
	"github.com/rfmelo/corretora/pkg/logger"
)

type stubClientRepo struct {
	byDoc   map[string]domain.Client
	created []domain.Client
	updated []domain.Client
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{byDoc: map[string]domain.Client{}}
}

func (s *stubClientRepo) GetByCPFCNPJ(_ context.Context, digits string) (domain.Client, error) {
	if client, ok := s.byDoc[digits]; ok {
		return client, nil
	}
	return domain.Client{}, domain.ErrNotFound
}

func (s *stubClientRepo) Create(_ context.Context, client domain.Client) (domain.Client, error) {
	s.byDoc[client.CPFCNPJ] = client
	s.created = append(s.created, client)
	return client, nil
}

func (s *stubClientRepo) Update(_ context.Context, client domain.Client) (domain.Client, error) {
	s.byDoc[client.CPFCNPJ] = client
	s.updated = append(s.updated, client)
	return client, nil
}

type stubPolicyRepo struct {
	byNumber map[string]domain.Policy
	created  []domain.Policy
	updated  []domain.Policy
}

func newStubPolicyRepo() *stubPolicyRepo {
	return &stubPolicyRepo{byNumber: map[string]domain.Policy{}}
}

func (s *stubPolicyRepo) GetByNumber(_ context.Context, number string) (domain.Policy, error) {
	if policy, ok := s.byNumber[number]; ok {
		return policy, nil
	}
	return domain.Policy{}, domain.ErrNotFound
}

func (s *stubPolicyRepo) Create(_ context.Context, policy domain.Policy) (domain.Policy, error) {
	s.byNumber[policy.PolicyNumber] = policy
	s.created = append(s.created, policy)
	return policy, nil
}

func (s *stubPolicyRepo) Update(_ context.Context, policy domain.Policy) (domain.Policy, error) {
	s.byNumber[policy.PolicyNumber] = policy
	s.updated = append(s.updated, policy)
	return policy, nil
}

type stubCommissionRepo struct {
	created []domain.Commission
}

func (s *stubCommissionRepo) Create(_ context.Context, commission domain.Commission) (domain.Commission, error) {
	s.created = append(s.created, commission)
	return commission, nil
}

type stubJobRepo struct {
	created []domain.ImportJob
}

func (s *stubJobRepo) Create(_ context.Context, job domain.ImportJob) (domain.ImportJob, error) {
	s.created = append(s.created, job)
	return job, nil
}

func (s *stubJobRepo) ListByUser(_ context.Context, userID uuid.UUID, _, _ int) ([]domain.ImportJob, error) {
	var jobs []domain.ImportJob
	for _, job := range s.created {
		if job.UserID == userID {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

type testEnv struct {
	service     *Service
	clients     *stubClientRepo
	policies    *stubPolicyRepo
	commissions *stubCommissionRepo
	jobs        *stubJobRepo
}

func newTestEnv() *testEnv {
	clients := newStubClientRepo()
	policies := newStubPolicyRepo()
	commissions := &stubCommissionRepo{}
	jobs := &stubJobRepo{}

	engine := NewEngine(clients, policies, commissions)
	service := NewService(DefaultRegistry(), engine, jobs, logger.New())

	return &testEnv{
		service:     service,
		clients:     clients,
		policies:    policies,
		commissions: commissions,
		jobs:        jobs,
	}
}

func clientBatch(values ...[3]string) ([]string, []RawRow, ColumnMapping) {
	headers := []string{"Nome", "CPF", "Email"}
	mapping := ColumnMapping{"Nome": FieldName, "CPF": FieldCPFCNPJ, "Email": FieldEmail}
	rows := make([]RawRow, len(values))
	for i, v := range values {
		rows[i] = RawRow{
			Number: i + 2,
			Cells:  map[string]string{"Nome": v[0], "CPF": v[1], "Email": v[2]},
		}
	}
	return headers, rows, mapping
}

func TestCommitInsertsClient(t *testing.T) {
	env := newTestEnv()
	headers, rows, mapping := clientBatch([3]string{"Ana Silva", "123.456.789-00", "ana@x.com"})

	result, err := env.service.Commit(context.Background(), CommitRequest{
		EntityType: EntityTypeClients,
		Headers:    headers,
		Rows:       rows,
		Mapping:    mapping,
		FileName:   "clientes.csv",
		UserID:     uuid.New(),
	})
	if err != nil {
		t.Fatalf("commit returned error: %v", err)
	}

	if result.Summary.Imported != 1 || result.Summary.Errors != 0 {
		t.Fatalf("unexpected summary: %+v", result.Summary)
	}
	if result.Status != domain.ImportStatusSuccess {
		t.Fatalf("expected success status, got %s", result.Status)
	}
	if len(env.clients.created) != 1 {
		t.Fatalf("expected 1 client insert, got %d", len(env.clients.created))
	}

	client := env.clients.created[0]
	if client.CPFCNPJ != "12345678900" {
		t.Fatalf("expected normalized document, got %q", client.CPFCNPJ)
	}
	if client.Kind != domain.PersonKindIndividual {
		t.Fatalf("11-digit document must derive PF, got %s", client.Kind)
	}
	if !client.Active {
		t.Fatal("inserted client must be active")
	}
}

func TestCommitNaturalKeyIdempotence(t *testing.T) {
	env := newTestEnv()
	headers, rows, mapping := clientBatch([3]string{"Ana Silva", "123.456.789-00", "ana@x.com"})
	userID := uuid.New()

	req := CommitRequest{
		EntityType: EntityTypeClients,
		Headers:    headers,
		Rows:       rows,
		Mapping:    mapping,
		FileName:   "clientes.csv",
		UserID:     userID,
	}

	if _, err := env.service.Commit(context.Background(), req); err != nil {
		t.Fatalf("first commit returned error: %v", err)
	}
	if _, err := env.service.Commit(context.Background(), req); err != nil {
		t.Fatalf("second commit returned error: %v", err)
	}

	if len(env.clients.created) != 1 {
		t.Fatalf("expected exactly one insert, got %d", len(env.clients.created))
	}
	if len(env.clients.updated) != 1 {
		t.Fatalf("second commit must update, got %d updates", len(env.clients.updated))
	}
	if len(env.clients.byDoc) != 1 {
		t.Fatalf("expected one client record, got %d", len(env.clients.byDoc))
	}
}

func TestCommitInvalidCPFReportsErrorStatus(t *testing.T) {
	env := newTestEnv()
	headers, rows, mapping := clientBatch([3]string{"Ana Silva", "123", "ana@x.com"})

	result, err := env.service.Commit(context.Background(), CommitRequest{
		EntityType: EntityTypeClients,
		Headers:    headers,
		Rows:       rows,
		Mapping:    mapping,
		FileName:   "clientes.csv",
		UserID:     uuid.New(),
	})
	if err != nil {
		t.Fatalf("commit returned error: %v", err)
	}

	if result.Summary.Imported != 0 || result.Summary.Errors != 1 {
		t.Fatalf("unexpected summary: %+v", result.Summary)
	}
	if result.Status != domain.ImportStatusError {
		t.Fatalf("expected error status, got %s", result.Status)
	}
	if len(result.ErrorMessages) != 1 || result.ErrorMessages[0] != "Row 2: CPF/CNPJ inválido" {
		t.Fatalf("unexpected error messages: %v", result.ErrorMessages)
	}
	if len(env.clients.created) != 0 {
		t.Fatal("invalid row must not write")
	}
}

func TestCommitPartialStatusAndCountConservation(t *testing.T) {
	env := newTestEnv()
	headers, rows, mapping := clientBatch(
		[3]string{"Ana Silva", "123.456.789-00", "ana@x.com"},
		[3]string{"Bruno", "123", "bruno@x.com"},
	)

	result, err := env.service.Commit(context.Background(), CommitRequest{
		EntityType: EntityTypeClients,
		Headers:    headers,
		Rows:       rows,
		Mapping:    mapping,
		FileName:   "clientes.csv",
		UserID:     uuid.New(),
	})
	if err != nil {
		t.Fatalf("commit returned error: %v", err)
	}

	if result.Summary.Imported+result.Summary.Errors != result.Summary.Total {
		t.Fatalf("count conservation violated: %+v", result.Summary)
	}
	if result.Status != domain.ImportStatusPartial {
		t.Fatalf("expected partial status, got %s", result.Status)
	}
}

func TestCommitPolicyClientNotFound(t *testing.T) {
	env := newTestEnv()
	headers := []string{"Apolice", "CPF", "Seguradora"}
	mapping := ColumnMapping{
		"Apolice":    FieldPolicyNumber,
		"CPF":        FieldClientCPFCNPJ,
		"Seguradora": FieldInsurer,
	}
	rows := []RawRow{{Number: 2, Cells: map[string]string{
		"Apolice":    "APO-1",
		"CPF":        "123.456.789-00",
		"Seguradora": "Porto",
	}}}

	result, err := env.service.Commit(context.Background(), CommitRequest{
		EntityType: EntityTypePolicies,
		Headers:    headers,
		Rows:       rows,
		Mapping:    mapping,
		FileName:   "apolices.csv",
		UserID:     uuid.New(),
	})
	if err != nil {
		t.Fatalf("commit returned error: %v", err)
	}

	if result.Summary.Errors != 1 || result.Summary.Imported != 0 {
		t.Fatalf("unexpected summary: %+v", result.Summary)
	}
	if !strings.Contains(result.ErrorMessages[0], "Cliente não encontrado: 123.456.789-00") {
		t.Fatalf("unexpected error message: %v", result.ErrorMessages)
	}
	if len(env.policies.created) != 0 {
		t.Fatal("missing cross-reference must not write")
	}
}

func TestCommitCommissionPolicyNotFound(t *testing.T) {
	env := newTestEnv()
	headers := []string{"Apolice", "Valor Bruto"}
	mapping := ColumnMapping{"Apolice": FieldPolicyNumber, "Valor Bruto": FieldGrossAmount}
	rows := []RawRow{{Number: 2, Cells: map[string]string{
		"Apolice":     "APO-999",
		"Valor Bruto": "150.00",
	}}}

	result, err := env.service.Commit(context.Background(), CommitRequest{
		EntityType: EntityTypeCommissions,
		Headers:    headers,
		Rows:       rows,
		Mapping:    mapping,
		FileName:   "comissoes.csv",
		UserID:     uuid.New(),
	})
	if err != nil {
		t.Fatalf("commit returned error: %v", err)
	}

	if result.Summary.Imported != 0 || result.Summary.Errors != 1 {
		t.Fatalf("unexpected summary: %+v", result.Summary)
	}
	if result.ErrorMessages[0] != "Row 2: Apólice não encontrada: APO-999" {
		t.Fatalf("unexpected error message: %q", result.ErrorMessages[0])
	}
}

func TestCommitPolicyThenCommissionInFileOrder(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()

	// Seed the referenced client, then import its policy.
	headers, rows, mapping := clientBatch([3]string{"Ana Silva", "123.456.789-00", "ana@x.com"})
	if _, err := env.service.Commit(context.Background(), CommitRequest{
		EntityType: EntityTypeClients,
		Headers:    headers,
		Rows:       rows,
		Mapping:    mapping,
		FileName:   "clientes.csv",
		UserID:     userID,
	}); err != nil {
		t.Fatalf("client commit returned error: %v", err)
	}

	policyHeaders := []string{"Apolice", "CPF", "Seguradora"}
	policyMapping := ColumnMapping{
		"Apolice":    FieldPolicyNumber,
		"CPF":        FieldClientCPFCNPJ,
		"Seguradora": FieldInsurer,
	}
	policyRows := []RawRow{{Number: 2, Cells: map[string]string{
		"Apolice":    "APO-1",
		"CPF":        "123.456.789-00",
		"Seguradora": "Porto",
	}}}
	result, err := env.service.Commit(context.Background(), CommitRequest{
		EntityType: EntityTypePolicies,
		Headers:    policyHeaders,
		Rows:       policyRows,
		Mapping:    policyMapping,
		FileName:   "apolices.csv",
		UserID:     userID,
	})
	if err != nil {
		t.Fatalf("policy commit returned error: %v", err)
	}
	if result.Summary.Imported != 1 {
		t.Fatalf("unexpected policy summary: %+v", result.Summary)
	}
	if env.policies.created[0].ClientID != env.clients.created[0].ID {
		t.Fatal("policy must reference the resolved client")
	}
	if env.policies.created[0].Status != domain.PolicyStatusActive {
		t.Fatalf("inserted policy must default to active, got %s", env.policies.created[0].Status)
	}

	// Commission rows always insert against the resolved policy.
	commHeaders := []string{"Apolice", "Valor Bruto"}
	commMapping := ColumnMapping{"Apolice": FieldPolicyNumber, "Valor Bruto": FieldGrossAmount}
	commRows := []RawRow{
		{Number: 2, Cells: map[string]string{"Apolice": "APO-1", "Valor Bruto": "150.00"}},
		{Number: 3, Cells: map[string]string{"Apolice": "APO-1", "Valor Bruto": "150.00"}},
	}
	commResult, err := env.service.Commit(context.Background(), CommitRequest{
		EntityType: EntityTypeCommissions,
		Headers:    commHeaders,
		Rows:       commRows,
		Mapping:    commMapping,
		FileName:   "comissoes.csv",
		UserID:     userID,
	})
	if err != nil {
		t.Fatalf("commission commit returned error: %v", err)
	}
	if commResult.Summary.Imported != 2 {
		t.Fatalf("unexpected commission summary: %+v", commResult.Summary)
	}
	if len(env.commissions.created) != 2 {
		t.Fatalf("identical commission rows must both insert, got %d", len(env.commissions.created))
	}
}

func TestCommitWritesOneImportJob(t *testing.T) {
	env := newTestEnv()
	headers, rows, mapping := clientBatch(
		[3]string{"Ana Silva", "123.456.789-00", "ana@x.com"},
		[3]string{"Bruno", "123", "bruno@x.com"},
	)
	userID := uuid.New()

	if _, err := env.service.Commit(context.Background(), CommitRequest{
		EntityType: EntityTypeClients,
		Headers:    headers,
		Rows:       rows,
		Mapping:    mapping,
		FileName:   "clientes.csv",
		UserID:     userID,
	}); err != nil {
		t.Fatalf("commit returned error: %v", err)
	}

	if len(env.jobs.created) != 1 {
		t.Fatalf("expected exactly one import job, got %d", len(env.jobs.created))
	}
	job := env.jobs.created[0]
	if job.UserID != userID || job.EntityType != EntityTypeClients || job.SourceFilename != "clientes.csv" {
		t.Fatalf("unexpected job: %+v", job)
	}
	if job.TotalRows != 2 || job.ImportedCount != 1 || job.ErrorCount != 1 {
		t.Fatalf("unexpected job counts: %+v", job)
	}
	if job.Status != domain.ImportStatusPartial {
		t.Fatalf("unexpected job status: %s", job.Status)
	}
	if len(job.ErrorDetails) != 1 || job.ErrorDetails[0] != "Row 3: CPF/CNPJ inválido" {
		t.Fatalf("unexpected job error details: %v", job.ErrorDetails)
	}
}

func TestCommitUnknownEntityType(t *testing.T) {
	env := newTestEnv()

	_, err := env.service.Commit(context.Background(), CommitRequest{
		EntityType: "vehicles",
		UserID:     uuid.New(),
	})
	if err == nil || !strings.Contains(err.Error(), "unknown entity type") {
		t.Fatalf("expected unknown entity type error, got %v", err)
	}
	if len(env.jobs.created) != 0 {
		t.Fatal("fatal errors must not write a ledger entry")
	}
}

func TestCommitRequiresUser(t *testing.T) {
	env := newTestEnv()
	headers, rows, mapping := clientBatch([3]string{"Ana Silva", "123.456.789-00", "ana@x.com"})

	_, err := env.service.Commit(context.Background(), CommitRequest{
		EntityType: EntityTypeClients,
		Headers:    headers,
		Rows:       rows,
		Mapping:    mapping,
	})
	if err == nil {
		t.Fatal("commit without a user must fail")
	}
}

func TestPreviewIsIdempotentAndConservesCounts(t *testing.T) {
	env := newTestEnv()
	headers, rows, mapping := clientBatch(
		[3]string{"Ana Silva", "123.456.789-00", "ana@x.com"},
		[3]string{"Bruno", "123", "bruno@x.com"},
	)

	req := PreviewRequest{
		EntityType: EntityTypeClients,
		Headers:    headers,
		Rows:       rows,
		Mapping:    mapping,
	}

	first, err := env.service.Preview(context.Background(), req)
	if err != nil {
		t.Fatalf("preview returned error: %v", err)
	}
	second, err := env.service.Preview(context.Background(), req)
	if err != nil {
		t.Fatalf("second preview returned error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical previews must yield identical results")
	}
	if first.Summary.Valid+first.Summary.Invalid != first.Summary.Total {
		t.Fatalf("count conservation violated: %+v", first.Summary)
	}
	if first.Summary.Valid != 1 || first.Summary.Invalid != 1 {
		t.Fatalf("unexpected summary: %+v", first.Summary)
	}
	if len(env.clients.created) != 0 || len(env.jobs.created) != 0 {
		t.Fatal("preview must not write")
	}
}

func TestPreviewScenarioFromUpload(t *testing.T) {
	env := newTestEnv()

	data := "Nome,CPF,Email\nAna Silva,123.456.789-00,ana@x.com\n"
	inspect, err := env.service.Inspect(context.Background(), InspectRequest{
		EntityType: EntityTypeClients,
		FileName:   "clientes.csv",
		Data:       strings.NewReader(data),
	})
	if err != nil {
		t.Fatalf("inspect returned error: %v", err)
	}

	if inspect.TotalRows != 1 || len(inspect.SampleRows) != 1 {
		t.Fatalf("unexpected inspect result: %+v", inspect)
	}
	if inspect.SuggestedMapping["Nome"] != FieldName ||
		inspect.SuggestedMapping["CPF"] != FieldCPFCNPJ ||
		inspect.SuggestedMapping["Email"] != FieldEmail {
		t.Fatalf("unexpected suggested mapping: %v", inspect.SuggestedMapping)
	}

	preview, err := env.service.Preview(context.Background(), PreviewRequest{
		EntityType: EntityTypeClients,
		Headers:    inspect.Headers,
		Rows:       inspect.SampleRows,
		Mapping:    inspect.SuggestedMapping,
	})
	if err != nil {
		t.Fatalf("preview returned error: %v", err)
	}
	if preview.Summary.Valid != 1 || preview.Summary.Invalid != 0 {
		t.Fatalf("unexpected preview summary: %+v", preview.Summary)
	}
}

func TestPreviewCapsDiagnosticsButCountsEverything(t *testing.T) {
	env := newTestEnv()

	var values [][3]string
	for i := 0; i < 120; i++ {
		values = append(values, [3]string{"", "123", ""})
	}
	headers, rows, mapping := clientBatch(values...)

	result, err := env.service.Preview(context.Background(), PreviewRequest{
		EntityType: EntityTypeClients,
		Headers:    headers,
		Rows:       rows,
		Mapping:    mapping,
	})
	if err != nil {
		t.Fatalf("preview returned error: %v", err)
	}

	if result.Summary.Invalid != 120 {
		t.Fatalf("every row must be counted, got %+v", result.Summary)
	}
	if len(result.Results) != 100 {
		t.Fatalf("results must cap at 100, got %d", len(result.Results))
	}
	if len(result.ErrorMessages) != 50 {
		t.Fatalf("error messages must cap at 50, got %d", len(result.ErrorMessages))
	}
}

func TestCommitEchoesAtMostTwentyErrors(t *testing.T) {
	env := newTestEnv()

	var values [][3]string
	for i := 0; i < 30; i++ {
		values = append(values, [3]string{"Cliente", "123", ""})
	}
	headers, rows, mapping := clientBatch(values...)

	result, err := env.service.Commit(context.Background(), CommitRequest{
		EntityType: EntityTypeClients,
		Headers:    headers,
		Rows:       rows,
		Mapping:    mapping,
		FileName:   "clientes.csv",
		UserID:     uuid.New(),
	})
	if err != nil {
		t.Fatalf("commit returned error: %v", err)
	}

	if result.Summary.Errors != 30 {
		t.Fatalf("every row must be processed, got %+v", result.Summary)
	}
	if len(result.ErrorMessages) != 20 {
		t.Fatalf("echoed errors must cap at 20, got %d", len(result.ErrorMessages))
	}
	if len(env.jobs.created) != 1 || len(env.jobs.created[0].ErrorDetails) != 30 {
		t.Fatalf("job must keep the full list under the storage cap")
	}
}
