package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rfmelo/corretora/internal/domain"
	"github.com/rfmelo/corretora/internal/repository"
	"github.com/rfmelo/corretora/pkg/logger"
)

// Response-size caps. They bound diagnostics, not processing: every row
// is always processed.
const (
	sampleRowLimit     = 10
	previewResultLimit = 100
	previewErrorLimit  = 50
	commitErrorLimit   = 20
)

// Service drives the import pipeline for one batch: parse, map,
// validate, reconcile, and write the audit ledger.
type Service struct {
	registry *Registry
	engine   *Engine
	jobs     repository.ImportJobRepository
	log      *logger.Logger
}

// NewService wires the batch runner.
func NewService(registry *Registry, engine *Engine, jobs repository.ImportJobRepository, log *logger.Logger) *Service {
	return &Service{
		registry: registry,
		engine:   engine,
		jobs:     jobs,
		log:      log,
	}
}

// InspectRequest carries a freshly uploaded file.
type InspectRequest struct {
	EntityType string
	FileName   string
	Data       io.Reader
}

// InspectResult describes the parsed upload: headers, row count, a
// small numbered sample, and the proposed column mapping the operator
// can correct before previewing.
type InspectResult struct {
	Headers          []string      `json:"headers"`
	TotalRows        int           `json:"totalRows"`
	SampleRows       []RawRow      `json:"sampleRows"`
	SuggestedMapping ColumnMapping `json:"suggestedMapping"`
}

// Inspect parses the upload without validating or writing anything.
func (s *Service) Inspect(ctx context.Context, req InspectRequest) (InspectResult, error) {
	cfg, ok := s.registry.Get(req.EntityType)
	if !ok {
		return InspectResult{}, fmt.Errorf("%w: %s", ErrUnknownEntityType, req.EntityType)
	}
	if req.Data == nil {
		return InspectResult{}, errors.New("data reader is required")
	}

	payload, err := io.ReadAll(req.Data)
	if err != nil {
		return InspectResult{}, fmt.Errorf("failed to read upload: %w", err)
	}

	table, err := ParseSheet(req.FileName, payload)
	if err != nil {
		return InspectResult{}, err
	}

	sample := table.Rows
	if len(sample) > sampleRowLimit {
		sample = sample[:sampleRowLimit]
	}

	return InspectResult{
		Headers:          table.Headers,
		TotalRows:        len(table.Rows),
		SampleRows:       sample,
		SuggestedMapping: ProposeMapping(table.Headers, cfg),
	}, nil
}

// PreviewRequest runs validation over mapped rows.
type PreviewRequest struct {
	EntityType string
	Headers    []string
	Rows       []RawRow
	Mapping    ColumnMapping
}

// PreviewSummary aggregates the validation verdicts.
type PreviewSummary struct {
	Total   int `json:"total"`
	Valid   int `json:"validCount"`
	Invalid int `json:"invalidCount"`
}

// PreviewResult reports per-row verdicts (capped) plus flattened error
// messages for the operator.
type PreviewResult struct {
	Summary       PreviewSummary `json:"summary"`
	Results       []RowOutcome   `json:"results"`
	ErrorMessages []string       `json:"errorMessages"`
}

// Preview validates every row without touching storage. Calling it
// twice with the same input yields the same result.
func (s *Service) Preview(ctx context.Context, req PreviewRequest) (PreviewResult, error) {
	cfg, ok := s.registry.Get(req.EntityType)
	if !ok {
		return PreviewResult{}, fmt.Errorf("%w: %s", ErrUnknownEntityType, req.EntityType)
	}

	result := PreviewResult{
		Results:       []RowOutcome{},
		ErrorMessages: []string{},
	}
	result.Summary.Total = len(req.Rows)

	for _, row := range req.Rows {
		outcome := ValidateRow(row, req.Headers, req.Mapping, cfg)
		if outcome.Valid {
			result.Summary.Valid++
		} else {
			result.Summary.Invalid++
			if len(result.ErrorMessages) < previewErrorLimit {
				result.ErrorMessages = append(result.ErrorMessages, formatRowError(outcome.RowNumber, strings.Join(outcome.Errors, "; ")))
			}
		}
		if len(result.Results) < previewResultLimit {
			result.Results = append(result.Results, outcome)
		}
	}

	return result, nil
}

// CommitRequest runs the full pipeline with writes.
type CommitRequest struct {
	EntityType string
	Headers    []string
	Rows       []RawRow
	Mapping    ColumnMapping
	FileName   string
	UserID     uuid.UUID
}

// CommitSummary aggregates the batch outcome.
type CommitSummary struct {
	Total    int `json:"total"`
	Imported int `json:"importedCount"`
	Errors   int `json:"errorCount"`
}

// CommitResult is the caller-facing batch report. ErrorMessages echoes
// only the first few failures; the full (capped) list lives on the
// persisted import job.
type CommitResult struct {
	Summary       CommitSummary       `json:"summary"`
	Status        domain.ImportStatus `json:"status"`
	ErrorMessages []string            `json:"errorMessages"`
	JobID         uuid.UUID           `json:"jobId,omitempty"`
}

// Commit validates every row, reconciles the valid ones in file order,
// and persists one audit record for the batch. Row failures never abort
// the loop; partial commit is policy.
func (s *Service) Commit(ctx context.Context, req CommitRequest) (CommitResult, error) {
	cfg, ok := s.registry.Get(req.EntityType)
	if !ok {
		return CommitResult{}, fmt.Errorf("%w: %s", ErrUnknownEntityType, req.EntityType)
	}
	if req.UserID == uuid.Nil {
		return CommitResult{}, errors.New("user id is required")
	}

	var (
		imported  int
		rowErrors []RowError
	)

	for _, row := range req.Rows {
		outcome := ValidateRow(row, req.Headers, req.Mapping, cfg)
		if !outcome.Valid {
			rowErrors = append(rowErrors, s.recordRowError(req.EntityType, RowError{
				RowNumber: outcome.RowNumber,
				Kind:      RowErrorValidation,
				Message:   strings.Join(outcome.Errors, "; "),
			}))
			continue
		}

		if _, err := s.engine.Reconcile(ctx, cfg, outcome.Record, req.UserID); err != nil {
			rowErrors = append(rowErrors, s.recordRowError(req.EntityType, classifyRowError(outcome.RowNumber, err)))
			continue
		}
		imported++
	}

	total := len(req.Rows)
	errorCount := len(rowErrors)

	details := make([]string, 0, errorCount)
	for _, rowErr := range rowErrors {
		details = append(details, formatRowError(rowErr.RowNumber, rowErr.Message))
	}

	job := domain.NewImportJob(req.UserID, req.EntityType, req.FileName, total, imported, errorCount, details)
	result := CommitResult{
		Summary: CommitSummary{Total: total, Imported: imported, Errors: errorCount},
		Status:  job.Status,
	}

	if persisted, err := s.jobs.Create(ctx, job); err != nil {
		// The row writes already happened; losing the audit record is an
		// operability problem, not a reason to fail the batch.
		s.log.WithFields(logrus.Fields{
			"entity_type": req.EntityType,
			"file":        req.FileName,
		}).WithError(err).Error("failed to persist import job")
	} else {
		result.JobID = persisted.ID
	}

	echo := details
	if len(echo) > commitErrorLimit {
		echo = echo[:commitErrorLimit]
	}
	result.ErrorMessages = append([]string{}, echo...)

	return result, nil
}

// EntityTypeDescriptor is the client-facing view of one registry entry,
// enough for the mapping screen to render field choices.
type EntityTypeDescriptor struct {
	Key            string   `json:"key"`
	Fields         []string `json:"fields"`
	RequiredFields []string `json:"requiredFields"`
	NaturalKey     []string `json:"naturalKey,omitempty"`
}

// EntityTypes lists the importable entity types in catalog order.
func (s *Service) EntityTypes() []EntityTypeDescriptor {
	keys := s.registry.Keys()
	descriptors := make([]EntityTypeDescriptor, 0, len(keys))
	for _, key := range keys {
		cfg, ok := s.registry.Get(key)
		if !ok {
			continue
		}
		descriptors = append(descriptors, EntityTypeDescriptor{
			Key:            cfg.Key,
			Fields:         cfg.FieldNames(),
			RequiredFields: cfg.RequiredFields,
			NaturalKey:     cfg.NaturalKey,
		})
	}
	return descriptors
}

// ListJobs returns the caller's import history, newest first.
func (s *Service) ListJobs(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.ImportJob, error) {
	return s.jobs.ListByUser(ctx, userID, limit, offset)
}

// classifyRowError tags a reconciliation failure: missing
// cross-references are reference errors, everything else is storage.
func classifyRowError(rowNumber int, err error) RowError {
	var refErr *ReferenceError
	if errors.As(err, &refErr) {
		return RowError{RowNumber: rowNumber, Kind: RowErrorReference, Message: refErr.Message}
	}
	return RowError{RowNumber: rowNumber, Kind: RowErrorStorage, Message: err.Error()}
}

func (s *Service) recordRowError(entityType string, rowErr RowError) RowError {
	s.log.WithFields(logrus.Fields{
		"entity_type": entityType,
		"row":         rowErr.RowNumber,
		"kind":        string(rowErr.Kind),
	}).Warn(rowErr.Message)
	return rowErr
}

func formatRowError(rowNumber int, message string) string {
	return fmt.Sprintf("Row %d: %s", rowNumber, message)
}
