package records

import (
	"encoding/json"
	"fmt"
	"os"
)

// recordRow is the flat on-disk shape shared by the JSON provider and the
// baseline snapshot. Field names match the columns a "save baseline"
// export writes, so a snapshot round-trips through either reader.
type recordRow struct {
	Domain           string `json:"Domain"`
	Label            string `json:"Label"`
	RecordType       string `json:"RecordType"`
	ExpectedValue    string `json:"ExpectedValue"`
	IsOptional       bool   `json:"IsOptional"`
	TTL              int    `json:"TTL"`
	SupportedService string `json:"SupportedService"`
}

// toExpectedRecord maps one flat row into the canonical model
func (row recordRow) toExpectedRecord() (ExpectedRecord, error) {
	rtype, err := ParseRecordType(row.RecordType)
	if err != nil {
		return ExpectedRecord{}, err
	}
	value, err := ParseValue(rtype, row.ExpectedValue)
	if err != nil {
		return ExpectedRecord{}, err
	}
	ttl := row.TTL
	if ttl < 0 {
		ttl = 0
	}
	return ExpectedRecord{
		Domain:   CanonicalHost(row.Domain),
		Label:    row.Label,
		Type:     rtype,
		Value:    value,
		Optional: row.IsOptional,
		TTL:      ttl,
		Service:  row.SupportedService,
	}, nil
}

// JSONProvider reads expected records from a JSON file containing an
// array of flat rows
type JSONProvider struct {
	Path string
}

// Records implements the Provider interface for JSON sources
func (p JSONProvider) Records(domain string) ([]ExpectedRecord, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("reading JSON file: %w", err)
	}

	var rows []recordRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing JSON file: %w", err)
	}

	domain = CanonicalHost(domain)
	var recs []ExpectedRecord

	for n, row := range rows {
		if CanonicalHost(row.Domain) != domain {
			continue
		}
		rec, err := row.toExpectedRecord()
		if err != nil {
			return nil, fmt.Errorf("JSON record %d: %w", n, err)
		}
		recs = append(recs, rec)
	}

	if len(recs) == 0 {
		return nil, fmt.Errorf("no records in %s match domain %s", p.Path, domain)
	}
	return recs, nil
}
