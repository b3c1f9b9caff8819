package score

import (
	"fmt"
	"math"
	"strings"

	"github.com/faanross/m365dns/internal/compare"
)

// Tier buckets a numeric score for the health profile
type Tier string

const (
	TierHealthy  Tier = "Healthy"
	TierWarning  Tier = "Warning"
	TierCritical Tier = "Critical"
)

// Priority is the readiness profile's remediation urgency, derived from
// blocking conditions rather than the numeric score
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// Assessment aggregates one domain's comparison results and auxiliary
// checks into a weighted readiness percentage plus both tier profiles.
// Each invocation produces a fresh Assessment; it is never shared across
// domains or mutated after return.
type Assessment struct {
	Domain          string           `json:"Domain"`
	Score           int              `json:"Score"`
	Tier            Tier             `json:"Tier"`
	Priority        Priority         `json:"Priority"`
	Checks          []Check          `json:"Checks"`
	CriticalActions []string         `json:"CriticalActions"`
	Recommendations []string         `json:"Recommendations"`
	Results         []compare.Result `json:"Results"`
}

// Score aggregates comparison results and auxiliary checks for a domain.
// Each applicable check contributes one pass/fail point; the score is the
// rounded percentage of passed points. A domain with zero applicable
// checks scores 100 (vacuous pass).
//
// criticalActions collect missing-and-mandatory conditions; format and
// posture improvements land in recommendations. Both lists keep detection
// order and are never deduplicated.
func Score(domain string, results []compare.Result, aux []Check) Assessment {
	assessment := Assessment{
		Domain:  domain,
		Results: results,
	}

	checks := []Check{
		mxCheckFromResults(results),
		srvCheckFromResults(results),
	}
	checks = append(checks, aux...)

	var applicable, passed int
	for _, check := range checks {
		if !check.Applicable {
			continue
		}
		applicable++
		if check.Passed {
			passed++
		}
		assessment.CriticalActions = append(assessment.CriticalActions, check.CriticalActions...)
		assessment.Recommendations = append(assessment.Recommendations, check.Recommendations...)
	}
	assessment.Checks = checks

	// Legacy-format migrations are posture improvements, never blockers
	for _, r := range results {
		if r.FormatNote == compare.NoteLegacyMX {
			assessment.Recommendations = append(assessment.Recommendations,
				fmt.Sprintf("Migrate the MX record for %s to the modern *.mx.microsoft format", r.Domain))
		}
		if strings.Contains(r.Details, compare.NoteLegacyDKIM) {
			assessment.Recommendations = append(assessment.Recommendations,
				fmt.Sprintf("Migrate the DKIM target for %s to the modern *.dkim.mx.microsoft format", r.FQDN))
		}
	}

	if applicable == 0 {
		assessment.Score = 100
	} else {
		assessment.Score = int(math.Round(100 * float64(passed) / float64(applicable)))
	}

	assessment.Tier = tierForScore(assessment.Score)
	assessment.Priority = Prioritize(results, aux)

	return assessment
}

// tierForScore applies the health profile thresholds
func tierForScore(score int) Tier {
	switch {
	case score >= 90:
		return TierHealthy
	case score >= 70:
		return TierWarning
	default:
		return TierCritical
	}
}

// Prioritize derives the readiness profile's urgency from the presence of
// specific blocking conditions, independent of the numeric score:
//
//   - any deprecated record, or SPF and DMARC both absent  -> Critical
//   - legacy MX or DKIM format                             -> at least High
//   - only unresolved legacy Skype aliases                 -> Medium
//   - nothing of note                                      -> Low
func Prioritize(results []compare.Result, aux []Check) Priority {
	var spfAbsent, dmarcAbsent, deprecatedFound bool
	var auxFailed bool

	for _, check := range aux {
		if !check.Applicable {
			continue
		}
		switch check.Name {
		case CheckSPF:
			spfAbsent = check.Absent
		case CheckDMARC:
			dmarcAbsent = check.Absent
		case CheckDeprecated:
			deprecatedFound = !check.Passed && len(check.CriticalActions) > 0
		}
		if !check.Passed {
			auxFailed = true
		}
	}

	if deprecatedFound || (spfAbsent && dmarcAbsent) {
		return PriorityCritical
	}

	var legacyFormat, legacySkype, recordIssue bool
	for _, r := range results {
		if r.FormatNote == compare.NoteLegacyMX || strings.Contains(r.Details, compare.NoteLegacyDKIM) {
			legacyFormat = true
		}
		if strings.Contains(r.Details, compare.NoteLegacySkype) {
			legacySkype = true
		}
		if r.Status == compare.StatusMismatch || r.Status == compare.StatusError ||
			(r.Status == compare.StatusMissing && !r.IsOptional) {
			recordIssue = true
		}
	}

	if legacyFormat {
		return PriorityHigh
	}
	if legacySkype && !recordIssue && !auxFailed {
		return PriorityMedium
	}
	if recordIssue || auxFailed {
		return PriorityHigh
	}
	return PriorityLow
}

// mxCheckFromResults derives the MX category from the comparison rows.
// The category applies only when the expected set contains MX records;
// optional MX records that are simply absent do not fail it.
func mxCheckFromResults(results []compare.Result) Check {
	check := Check{Name: CheckMX, Status: StatusNotChecked}

	allGood := true
	for _, r := range results {
		if r.RecordType != "MX" {
			continue
		}
		check.Applicable = true
		if check.Status == StatusNotChecked {
			check.Status = StatusOK
		}

		switch r.Status {
		case compare.StatusMatch:
			// fine
		case compare.StatusMissing:
			if !r.IsOptional {
				allGood = false
				check.Status = StatusCriticalMissing
				check.Absent = true
				check.CriticalActions = append(check.CriticalActions,
					fmt.Sprintf("Add the MX record for %s (%s)", r.Domain, r.ExpectedValue))
			}
		default:
			allGood = false
			check.Status = StatusInvalid
			check.CriticalActions = append(check.CriticalActions,
				fmt.Sprintf("Fix the MX record for %s: expected %s, found %s", r.Domain, r.ExpectedValue, r.ActualValue))
		}
	}

	check.Passed = check.Applicable && allGood
	return check
}

// srvCheckFromResults derives the SRV category from the comparison rows.
// Optional SRV records that are simply absent do not fail the category.
func srvCheckFromResults(results []compare.Result) Check {
	check := Check{Name: CheckSRV, Status: StatusNotChecked}

	allGood := true
	for _, r := range results {
		if r.RecordType != "SRV" {
			continue
		}
		check.Applicable = true
		if check.Status == StatusNotChecked {
			check.Status = StatusOK
		}

		switch r.Status {
		case compare.StatusMatch:
			// fine
		case compare.StatusMissing:
			if !r.IsOptional {
				allGood = false
				check.Status = StatusCriticalMissing
				check.CriticalActions = append(check.CriticalActions,
					fmt.Sprintf("Add the SRV record at %s (%s)", r.FQDN, r.ExpectedValue))
			}
		default:
			allGood = false
			check.Status = StatusInvalid
			check.Recommendations = append(check.Recommendations,
				fmt.Sprintf("Review the SRV record at %s: expected %s, found %s", r.FQDN, r.ExpectedValue, r.ActualValue))
		}
	}

	check.Passed = check.Applicable && allGood
	return check
}
