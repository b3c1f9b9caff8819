package score

// Check is one pass/fail category feeding the compliance score. Checks
// derived from record comparisons (MX, SRV) are built by Score itself;
// auxiliary checks (SPF, DMARC, DKIM, deprecated records) are produced
// by a Checker and passed in, so callers control which categories apply.
type Check struct {
	Name   string
	Status string

	// Applicable is false for categories the caller did not request;
	// such checks are excluded from the score's point pool entirely
	Applicable bool
	Passed     bool

	// Absent marks a check whose subject record was not found at all,
	// as opposed to found-but-wrong; the priority profile distinguishes
	// the two
	Absent bool

	CriticalActions []string
	Recommendations []string
}

// Canonical check names
const (
	CheckMX         = "MX"
	CheckSPF        = "SPF"
	CheckDMARC      = "DMARC"
	CheckDKIM       = "DKIM"
	CheckSRV        = "SRV"
	CheckDeprecated = "Deprecated"
)

// Status strings rendered into reports. "CRITICAL - Missing" marks a
// mandatory record that is absent from DNS.
const (
	StatusOK              = "OK"
	StatusCriticalMissing = "CRITICAL - Missing"
	StatusInvalid         = "Invalid"
	StatusNotChecked      = "Not checked"
)
