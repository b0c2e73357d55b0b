package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rfmelo/corretora/internal/domain"
)

var dateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"02-01-2006",
	time.RFC3339,
}

// RowOutcome is the validation verdict for one mapped row.
type RowOutcome struct {
	RowNumber int               `json:"rowNumber"`
	Record    map[string]string `json:"record"`
	Valid     bool              `json:"valid"`
	Errors    []string          `json:"errors,omitempty"`
}

// ValidateRow maps one raw row through the column mapping and applies
// required-field and per-type structural checks. All problems on a row
// are collected so the operator sees everything at once; bad data is a
// normal outcome, never an error return. Storage is not touched.
func ValidateRow(row RawRow, headers []string, mapping ColumnMapping, cfg EntityTypeConfig) RowOutcome {
	record := BuildRecord(row, headers, mapping)

	var errs []string
	for _, field := range cfg.RequiredFields {
		if strings.TrimSpace(record[field]) == "" {
			errs = append(errs, fmt.Sprintf("Campo obrigatório '%s' não preenchido", field))
		}
	}

	switch cfg.Key {
	case EntityTypeClients:
		if value := record[FieldCPFCNPJ]; value != "" {
			digits := domain.NormalizeCPFCNPJ(value)
			if len(digits) != 11 && len(digits) != 14 {
				errs = append(errs, "CPF/CNPJ inválido")
			}
		}
		if value := record[FieldEmail]; value != "" && !strings.Contains(value, "@") {
			errs = append(errs, "E-mail inválido")
		}
	case EntityTypePolicies:
		for _, field := range []string{FieldStartDate, FieldEndDate} {
			if value := record[field]; value != "" {
				if _, err := ParseDate(value); err != nil {
					errs = append(errs, fmt.Sprintf("Data inválida: %s", field))
				}
			}
		}
	case EntityTypeCommissions:
		if value := record[FieldGrossAmount]; value != "" {
			if _, err := ParseAmount(value); err != nil {
				errs = append(errs, fmt.Sprintf("Valor inválido: %s", FieldGrossAmount))
			}
		}
	}

	return RowOutcome{
		RowNumber: row.Number,
		Record:    record,
		Valid:     len(errs) == 0,
		Errors:    errs,
	}
}

// ParseDate parses a calendar date in the formats uploads actually use
// (dd/mm/yyyy first, then ISO).
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}

// ParseAmount parses a monetary value, accepting both "1234.56" and the
// pt-BR "1.234,56" form, with an optional R$ prefix.
func ParseAmount(value string) (float64, error) {
	cleaned := strings.TrimSpace(value)
	cleaned = strings.TrimPrefix(cleaned, "R$")
	cleaned = strings.TrimSpace(cleaned)
	if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse amount %q", value)
	}
	return amount, nil
}
