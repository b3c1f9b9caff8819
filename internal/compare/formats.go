package compare

import (
	"strings"

	"github.com/faanross/m365dns/internal/records"
)

// Advisory notes emitted by the format rules. These are informational
// classifications; they never change a comparison's match status.
const (
	NoteLegacyMX    = "legacy MX format"
	NoteLegacyDKIM  = "legacy DKIM tenant suffix detected"
	NoteLegacySkype = "legacy Skype for Business alias"
)

// FormatRule classifies a resolved hostname against one known Microsoft
// naming generation. Rules are evaluated top-down; the first rule that
// applies wins, so more specific patterns must precede broader ones.
type FormatRule struct {
	Name    string
	Applies func(rec records.ExpectedRecord, host string) bool
	Note    string // empty for modern formats, which need no advisory
}

// FormatRules is the ordered classification table for the hostname
// generations Microsoft 365 has used for the same logical records
var FormatRules = []FormatRule{
	{
		Name: "modern MX",
		Applies: func(rec records.ExpectedRecord, host string) bool {
			return rec.Type == records.TypeMX && hasSuffixFold(host, ".mx.microsoft")
		},
	},
	{
		Name: "legacy MX",
		Applies: func(rec records.ExpectedRecord, host string) bool {
			return rec.Type == records.TypeMX && hasSuffixFold(host, ".mail.protection.outlook.com")
		},
		Note: NoteLegacyMX,
	},
	{
		Name: "modern DKIM",
		Applies: func(rec records.ExpectedRecord, host string) bool {
			return isDKIMLabel(rec.Label) && hasSuffixFold(host, ".dkim.mx.microsoft")
		},
	},
	{
		Name: "legacy DKIM",
		Applies: func(rec records.ExpectedRecord, host string) bool {
			return isDKIMLabel(rec.Label) && hasSuffixFold(host, ".onmicrosoft.com")
		},
		Note: NoteLegacyDKIM,
	},
	{
		Name: "legacy Skype for Business",
		Applies: func(rec records.ExpectedRecord, host string) bool {
			return isSkypeLabel(rec.Label) && hasSuffixFold(host, ".lync.com")
		},
		Note: NoteLegacySkype,
	},
}

// ClassifyFormat runs the rule table against a resolved hostname and
// returns the advisory note of the first applicable rule, or "" when no
// rule applies or the applicable rule describes a modern format
func ClassifyFormat(rec records.ExpectedRecord, host string) string {
	for _, rule := range FormatRules {
		if rule.Applies(rec, host) {
			return rule.Note
		}
	}
	return ""
}

func hasSuffixFold(host, suffix string) bool {
	return strings.HasSuffix(records.CanonicalHost(host), suffix)
}

func isDKIMLabel(label string) bool {
	return strings.Contains(strings.ToLower(label), "_domainkey")
}

func isSkypeLabel(label string) bool {
	switch strings.ToLower(label) {
	case "sip", "lyncdiscover", "_sip._tls", "_sipfederationtls._tcp":
		return true
	}
	return false
}
