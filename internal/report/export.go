package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/faanross/m365dns/internal/checker"
	"github.com/faanross/m365dns/internal/compare"
)

// flatten collects the comparison rows from every domain that produced an
// assessment; provider-faulted domains contribute nothing
func flatten(results []checker.DomainResult) []compare.Result {
	var rows []compare.Result
	for _, dr := range results {
		if dr.Assessment == nil {
			continue
		}
		rows = append(rows, dr.Assessment.Results...)
	}
	return rows
}

// WriteCSV exports all comparison rows as CSV with a header row
func WriteCSV(w io.Writer, results []checker.DomainResult) error {
	writer := csv.NewWriter(w)

	header := []string{
		"Domain", "Label", "RecordType", "FQDN", "Status",
		"ExpectedValue", "ActualValue", "FormatNote", "Details",
		"SupportedService", "IsOptional", "TTL",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, r := range flatten(results) {
		row := []string{
			r.Domain, r.Label, string(r.RecordType), r.FQDN, string(r.Status),
			r.ExpectedValue, r.ActualValue, r.FormatNote, r.Details,
			r.SupportedService, strconv.FormatBool(r.IsOptional), strconv.Itoa(r.TTL),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteJSON exports all comparison rows as a JSON array. The output is
// also a valid baseline snapshot: the flat rows carry every field a
// baseline expected-record provider reads back.
func WriteJSON(w io.Writer, results []checker.DomainResult) error {
	rows := flatten(results)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rows); err != nil {
		return fmt.Errorf("encoding JSON report: %w", err)
	}
	return nil
}

// WriteAssessmentsJSON exports the full per-domain assessments, including
// scores, tiers and action lists
func WriteAssessmentsJSON(w io.Writer, results []checker.DomainResult) error {
	type domainRow struct {
		Domain string      `json:"Domain"`
		Error  string      `json:"Error,omitempty"`
		Result interface{} `json:"Assessment,omitempty"`
	}

	rows := make([]domainRow, 0, len(results))
	for _, dr := range results {
		row := domainRow{Domain: dr.Domain}
		if dr.Err != nil {
			row.Error = dr.Err.Error()
		} else {
			row.Result = dr.Assessment
		}
		rows = append(rows, row)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rows); err != nil {
		return fmt.Errorf("encoding JSON report: %w", err)
	}
	return nil
}
