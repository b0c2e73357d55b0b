package importer

import (
	"strings"
	"unicode"
)

// ColumnMapping maps source column names, as they appear in the header
// row, to target field names. Columns absent from the mapping are
// ignored. When two columns claim the same target field, the first one
// in header order wins; later claims are dropped when the mapping is
// applied (see BuildRecord).
type ColumnMapping map[string]string

// ProposeMapping builds a best-effort mapping from header labels to the
// entity type's fields. For each header, the normalized label is tested
// against each field's normalized name and aliases for substring
// containment in either direction; the first matching field wins. A
// field already claimed by an earlier header is not proposed again.
// Mismatches are expected: the operator corrects the proposal before
// validation runs, so this never fails.
func ProposeMapping(headers []string, cfg EntityTypeConfig) ColumnMapping {
	mapping := make(ColumnMapping)
	claimed := make(map[string]bool)

	for _, header := range headers {
		normalized := normalizeLabel(header)
		if normalized == "" {
			continue
		}
		for _, field := range cfg.Fields {
			if claimed[field.Name] {
				continue
			}
			if labelMatchesField(normalized, field) {
				mapping[header] = field.Name
				claimed[field.Name] = true
				break
			}
		}
	}

	return mapping
}

func labelMatchesField(normalizedHeader string, field FieldSpec) bool {
	candidates := make([]string, 0, len(field.Aliases)+1)
	candidates = append(candidates, field.Name)
	candidates = append(candidates, field.Aliases...)

	for _, candidate := range candidates {
		normalized := normalizeLabel(candidate)
		if normalized == "" {
			continue
		}
		if strings.Contains(normalizedHeader, normalized) || strings.Contains(normalized, normalizedHeader) {
			return true
		}
	}
	return false
}

// normalizeLabel lowercases and keeps only letters and digits, so
// "CPF/CNPJ", "cpf_cnpj" and "Cpf Cnpj" all normalize the same way.
// Common pt-BR accents are folded to their base letters.
func normalizeLabel(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(value) {
		if folded, ok := accentFold[r]; ok {
			r = folded
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var accentFold = map[rune]rune{
	'á': 'a', 'à': 'a', 'â': 'a', 'ã': 'a',
	'é': 'e', 'ê': 'e',
	'í': 'i',
	'ó': 'o', 'ô': 'o', 'õ': 'o',
	'ú': 'u', 'ü': 'u',
	'ç': 'c',
}

// BuildRecord applies a mapping to a raw row, producing the mapped
// record consumed by validation and reconciliation. Cell values are
// trimmed. Duplicate targets resolve first-wins in header order.
func BuildRecord(row RawRow, headers []string, mapping ColumnMapping) map[string]string {
	record := make(map[string]string)
	for _, header := range headers {
		field, ok := mapping[header]
		if !ok || field == "" {
			continue
		}
		if _, taken := record[field]; taken {
			continue
		}
		record[field] = strings.TrimSpace(row.Cells[header])
	}
	return record
}
