package records

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// CSVProvider reads expected records from a CSV file. The first row must
// be a header; columns are matched by name, case-insensitively, so exports
// from different tools map onto the same canonical fields.
//
// Recognized columns: Domain, Label, RecordType, ExpectedValue,
// IsOptional, TTL, SupportedService. Domain, Label, RecordType and
// ExpectedValue are required.
type CSVProvider struct {
	Path string
}

// Records implements the Provider interface for CSV sources
func (p CSVProvider) Records(domain string) ([]ExpectedRecord, error) {
	f, err := os.Open(p.Path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV file: %w", err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("CSV file %s is empty", p.Path)
	}

	// Map header names to column indices
	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"domain", "label", "recordtype", "expectedvalue"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("CSV file %s missing required column %q", p.Path, required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	domain = CanonicalHost(domain)
	var recs []ExpectedRecord

	for n, row := range rows[1:] {
		rowDomain := CanonicalHost(field(row, "domain"))
		if rowDomain != domain {
			continue
		}

		rtype, err := ParseRecordType(field(row, "recordtype"))
		if err != nil {
			return nil, fmt.Errorf("CSV row %d: %w", n+2, err)
		}
		value, err := ParseValue(rtype, field(row, "expectedvalue"))
		if err != nil {
			return nil, fmt.Errorf("CSV row %d: %w", n+2, err)
		}

		recs = append(recs, ExpectedRecord{
			Domain:   rowDomain,
			Label:    field(row, "label"),
			Type:     rtype,
			Value:    value,
			Optional: parseOptional(field(row, "isoptional")),
			TTL:      parseTTL(field(row, "ttl")),
			Service:  field(row, "supportedservice"),
		})
	}

	if len(recs) == 0 {
		return nil, fmt.Errorf("no rows in %s match domain %s", p.Path, domain)
	}
	return recs, nil
}
