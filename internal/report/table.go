package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/faanross/m365dns/internal/checker"
	"github.com/faanross/m365dns/internal/compare"
	"github.com/faanross/m365dns/internal/score"
	"github.com/fatih/color"
)

var (
	matchColor    = color.New(color.FgGreen)
	mismatchColor = color.New(color.FgYellow)
	missingColor  = color.New(color.FgRed)
	errorColor    = color.New(color.FgRed, color.Bold)
	headerColor   = color.New(color.Bold)
)

// statusColor picks the render color for a comparison status
func statusColor(status compare.Status) *color.Color {
	switch status {
	case compare.StatusMatch:
		return matchColor
	case compare.StatusMismatch:
		return mismatchColor
	case compare.StatusMissing:
		return missingColor
	default:
		return errorColor
	}
}

// WriteTable renders the full per-domain assessment, one block per
// domain, to the given writer
func WriteTable(w io.Writer, results []checker.DomainResult) {
	for _, dr := range results {
		headerColor.Fprintf(w, "\n=== %s ===\n", dr.Domain)

		if dr.Err != nil {
			errorColor.Fprintf(w, "no expected records: %v\n", dr.Err)
			continue
		}

		writeComparisons(w, dr.Assessment.Results)
		writeAssessment(w, dr.Assessment)
	}
}

func writeComparisons(w io.Writer, results []compare.Result) {
	if len(results) == 0 {
		return
	}

	fmt.Fprintf(w, "%-45s %-6s %-10s %s\n", "NAME", "TYPE", "STATUS", "VALUE")
	for _, r := range results {
		value := r.ActualValue
		if r.Status == compare.StatusError {
			value = r.Details
		}
		line := fmt.Sprintf("%-45s %-6s %-10s %s", r.FQDN, r.RecordType, r.Status, value)
		statusColor(r.Status).Fprintln(w, line)

		if r.FormatNote != "" {
			fmt.Fprintf(w, "%-45s %s\n", "", r.FormatNote)
		}
		if r.Details != "" && r.Status != compare.StatusError {
			fmt.Fprintf(w, "%-45s %s\n", "", r.Details)
		}
	}
}

func writeAssessment(w io.Writer, a *score.Assessment) {
	fmt.Fprintf(w, "\nScore: %d%%  Tier: %s  Priority: %s\n", a.Score, a.Tier, a.Priority)

	for _, check := range a.Checks {
		if !check.Applicable {
			continue
		}
		fmt.Fprintf(w, "  %-12s %s\n", check.Name, check.Status)
	}

	if len(a.CriticalActions) > 0 {
		errorColor.Fprintln(w, "\nCritical actions:")
		for _, action := range a.CriticalActions {
			fmt.Fprintf(w, "  - %s\n", action)
		}
	}
	if len(a.Recommendations) > 0 {
		mismatchColor.Fprintln(w, "\nRecommendations:")
		for _, rec := range a.Recommendations {
			fmt.Fprintf(w, "  - %s\n", rec)
		}
	}
	fmt.Fprintln(w, strings.Repeat("-", 60))
}
