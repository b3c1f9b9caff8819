package records

import (
	"encoding/json"
	"fmt"
	"os"
)

// BaselineProvider reads expected records back out of a baseline snapshot
// written by a previous run. A snapshot row carries the full comparison
// result; only the expected-record fields are consumed here, so a prior
// run's output can stand in for any other expected-record source.
type BaselineProvider struct {
	Path string
}

// Records implements the Provider interface for baseline snapshots
func (p BaselineProvider) Records(domain string) ([]ExpectedRecord, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("reading baseline file: %w", err)
	}

	// Snapshot rows are a superset of recordRow; unknown result fields
	// (Status, ActualValue, ...) are ignored on unmarshal
	var rows []recordRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing baseline file: %w", err)
	}

	domain = CanonicalHost(domain)
	var recs []ExpectedRecord

	for n, row := range rows {
		if CanonicalHost(row.Domain) != domain {
			continue
		}
		rec, err := row.toExpectedRecord()
		if err != nil {
			return nil, fmt.Errorf("baseline record %d: %w", n, err)
		}
		recs = append(recs, rec)
	}

	if len(recs) == 0 {
		return nil, fmt.Errorf("no baseline records in %s match domain %s", p.Path, domain)
	}
	return recs, nil
}
