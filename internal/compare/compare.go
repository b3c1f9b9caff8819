package compare

import (
	"fmt"
	"sort"
	"strings"

	"github.com/faanross/m365dns/internal/dnsquery"
	"github.com/faanross/m365dns/internal/records"
)

// Status is the outcome of comparing one expected record to live DNS
type Status string

const (
	StatusMatch    Status = "Match"
	StatusMismatch Status = "Mismatch"
	StatusMissing  Status = "Missing"
	StatusError    Status = "Error"
)

// MissingValue is the rendered actual value for a record with no answer
const MissingValue = "(not found)"

// Result is one row of comparison output. It carries the expected-record
// fields alongside the outcome so a serialized result set can later be
// read back as a baseline expected-record source.
type Result struct {
	Domain           string             `json:"Domain"`
	Label            string             `json:"Label"`
	RecordType       records.RecordType `json:"RecordType"`
	FQDN             string             `json:"FQDN"`
	Status           Status             `json:"Status"`
	ExpectedValue    string             `json:"ExpectedValue"`
	ActualValue      string             `json:"ActualValue"`
	FormatNote       string             `json:"FormatNote,omitempty"`
	Details          string             `json:"Details,omitempty"`
	SupportedService string             `json:"SupportedService"`
	IsOptional       bool               `json:"IsOptional"`
	TTL              int                `json:"TTL"`
}

// Compare evaluates one expected record against the answers a resolver
// returned for its FQDN. A nil answer slice means the record was absent;
// a non-nil queryErr means the query mechanism itself faulted. The
// returned Result is a value and is never mutated afterward.
func Compare(expected records.ExpectedRecord, answers []dnsquery.Answer, queryErr error) Result {
	result := Result{
		Domain:           expected.Domain,
		Label:            expected.Label,
		RecordType:       expected.Type,
		FQDN:             expected.FQDN(),
		ExpectedValue:    expected.Value.Render(),
		SupportedService: expected.Service,
		IsOptional:       expected.Optional,
		TTL:              expected.TTL,
	}

	if queryErr != nil {
		result.Status = StatusError
		result.Details = queryErr.Error()
		return result
	}

	if len(answers) == 0 {
		result.Status = StatusMissing
		result.ActualValue = MissingValue
		return result
	}

	switch value := expected.Value.(type) {
	case records.MXValue:
		compareMX(&result, expected, value, answers)
	case records.CNAMEValue:
		compareCNAME(&result, expected, value, answers)
	case records.TXTValue:
		compareTXT(&result, value, answers)
	case records.SRVValue:
		compareSRV(&result, value, answers)
	case records.AddrValue:
		compareAddr(&result, value, answers)
	default:
		result.Status = StatusError
		result.Details = fmt.Sprintf("no comparison rule for record type %s", expected.Type)
	}

	return result
}

// compareMX selects the lowest-preference actual answer and matches on
// its exchange host. Preference itself is not part of the predicate; the
// legacy/modern generation of the exchange hostname is classified as an
// advisory format note.
func compareMX(result *Result, expected records.ExpectedRecord, want records.MXValue, answers []dnsquery.Answer) {
	// Copy before sorting so repeated comparisons of the same inputs
	// yield identical results regardless of answer order
	sorted := make([]dnsquery.Answer, len(answers))
	copy(sorted, answers)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, aok := sorted[i].Value.(records.MXValue)
		b, bok := sorted[j].Value.(records.MXValue)
		if !aok || !bok {
			return aok
		}
		return a.Preference < b.Preference
	})

	preferred, ok := sorted[0].Value.(records.MXValue)
	if !ok {
		result.Status = StatusError
		result.Details = "answer is not an MX record"
		return
	}

	result.ActualValue = preferred.Render()
	result.FormatNote = ClassifyFormat(expected, preferred.Exchange)

	if records.CanonicalHost(preferred.Exchange) == records.CanonicalHost(want.Exchange) {
		result.Status = StatusMatch
		return
	}
	result.Status = StatusMismatch
	result.Details = fmt.Sprintf("expected exchange %s, got %s", want.Exchange, preferred.Exchange)
}

// compareCNAME matches the actual alias target case- and trailing-dot-
// insensitively. Label heuristics (legacy DKIM tenant suffix, legacy
// Skype aliases) append advisory details without changing the status.
func compareCNAME(result *Result, expected records.ExpectedRecord, want records.CNAMEValue, answers []dnsquery.Answer) {
	actual, ok := answers[0].Value.(records.CNAMEValue)
	if !ok {
		result.Status = StatusError
		result.Details = "answer is not a CNAME record"
		return
	}

	result.ActualValue = actual.Render()

	if note := ClassifyFormat(expected, actual.Target); note != "" {
		result.Details = note
	}

	if records.CanonicalHost(actual.Target) == records.CanonicalHost(want.Target) {
		result.Status = StatusMatch
		return
	}

	result.Status = StatusMismatch
	mismatch := fmt.Sprintf("expected target %s, got %s", want.Target, actual.Target)
	if result.Details != "" {
		result.Details = result.Details + "; " + mismatch
	} else {
		result.Details = mismatch
	}
}

// compareTXT matches when the expected text equals the joined segments of
// any one actual TXT answer; unrelated TXT records coexisting at the same
// name do not cause a mismatch
func compareTXT(result *Result, want records.TXTValue, answers []dnsquery.Answer) {
	wantText := want.Text()

	var actualTexts []string
	for _, ans := range answers {
		actual, ok := ans.Value.(records.TXTValue)
		if !ok {
			continue
		}
		text := actual.Text()
		if text == wantText {
			result.Status = StatusMatch
			result.ActualValue = text
			return
		}
		actualTexts = append(actualTexts, text)
	}

	result.Status = StatusMismatch
	result.ActualValue = strings.Join(actualTexts, "; ")
	result.Details = fmt.Sprintf("no TXT answer at this name equals %q", wantText)
}

// compareSRV matches on target and port only; priority and weight tuning
// is operational preference, not misconfiguration
func compareSRV(result *Result, want records.SRVValue, answers []dnsquery.Answer) {
	wantTarget := records.CanonicalHost(want.Target)

	var first *records.SRVValue
	for _, ans := range answers {
		actual, ok := ans.Value.(records.SRVValue)
		if !ok {
			continue
		}
		if first == nil {
			v := actual
			first = &v
		}
		if records.CanonicalHost(actual.Target) == wantTarget && actual.Port == want.Port {
			result.Status = StatusMatch
			result.ActualValue = actual.Render()
			return
		}
	}

	if first == nil {
		result.Status = StatusError
		result.Details = "answer is not an SRV record"
		return
	}

	result.Status = StatusMismatch
	result.ActualValue = first.Render()
	result.Details = fmt.Sprintf("expected %s port %d, got %s port %d",
		want.Target, want.Port, first.Target, first.Port)
}

// compareAddr matches when any answer carries the expected address
func compareAddr(result *Result, want records.AddrValue, answers []dnsquery.Answer) {
	var actualIPs []string
	for _, ans := range answers {
		actual, ok := ans.Value.(records.AddrValue)
		if !ok {
			continue
		}
		if strings.EqualFold(actual.IP, want.IP) {
			result.Status = StatusMatch
			result.ActualValue = actual.IP
			return
		}
		actualIPs = append(actualIPs, actual.IP)
	}

	result.Status = StatusMismatch
	result.ActualValue = strings.Join(actualIPs, "; ")
	result.Details = fmt.Sprintf("expected address %s not present", want.IP)
}
