package domain

import (
	"time"

	"github.com/google/uuid"
)

// ImportStatus is the three-tier outcome of a committed batch.
type ImportStatus string

const (
	ImportStatusSuccess ImportStatus = "success"
	ImportStatusPartial ImportStatus = "partial"
	ImportStatusError   ImportStatus = "error"
)

// MaxStoredErrors caps the error details persisted per import job.
const MaxStoredErrors = 100

// ImportJob is the audit record written once per committed batch. It is
// never mutated after creation.
type ImportJob struct {
	ID             uuid.UUID    `json:"id"`
	UserID         uuid.UUID    `json:"user_id"`
	EntityType     string       `json:"entity_type"`
	SourceFilename string       `json:"source_filename"`
	TotalRows      int          `json:"total_rows"`
	ImportedCount  int          `json:"imported_count"`
	ErrorCount     int          `json:"error_count"`
	Status         ImportStatus `json:"status"`
	ErrorDetails   []string     `json:"error_details"`
	CreatedAt      time.Time    `json:"created_at"`
}

// NewImportJob assembles the audit record for one completed batch,
// deriving the status and truncating the stored error list.
func NewImportJob(userID uuid.UUID, entityType, sourceFilename string, totalRows, importedCount, errorCount int, errorDetails []string) ImportJob {
	details := errorDetails
	if len(details) > MaxStoredErrors {
		details = details[:MaxStoredErrors]
	}
	stored := make([]string, len(details))
	copy(stored, details)

	return ImportJob{
		ID:             uuid.New(),
		UserID:         userID,
		EntityType:     entityType,
		SourceFilename: sourceFilename,
		TotalRows:      totalRows,
		ImportedCount:  importedCount,
		ErrorCount:     errorCount,
		Status:         DeriveImportStatus(totalRows, errorCount),
		ErrorDetails:   stored,
		CreatedAt:      time.Now(),
	}
}

// DeriveImportStatus maps batch counts onto the status enum: success
// when nothing failed, error when everything failed, partial otherwise.
func DeriveImportStatus(totalRows, errorCount int) ImportStatus {
	switch {
	case errorCount == 0:
		return ImportStatusSuccess
	case errorCount == totalRows:
		return ImportStatusError
	default:
		return ImportStatusPartial
	}
}
