package score

import (
	"context"
	"fmt"
	"strings"

	"github.com/faanross/m365dns/internal/dnsquery"
	"github.com/faanross/m365dns/internal/records"
)

// SPFMaxLookups is the RFC 7208 limit on DNS-querying mechanisms
const SPFMaxLookups = 10

// SPFRequiredInclude is the include mechanism Microsoft 365 mail requires
const SPFRequiredInclude = "include:spf.protection.outlook.com"

// Checker performs the auxiliary DNS checks that feed the compliance
// scorer alongside the expected-record comparisons
type Checker struct {
	Resolver dnsquery.Resolver
}

// CheckSPF locates the SPF TXT record at the domain apex and verifies it
// authorizes Microsoft 365 senders
func (c Checker) CheckSPF(ctx context.Context, domain string) Check {
	check := Check{Name: CheckSPF, Applicable: true}

	answers, err := c.Resolver.Lookup(ctx, domain, records.TypeTXT)
	if err != nil {
		check.Status = fmt.Sprintf("Error: %v", err)
		return check
	}

	spf := findTXTWithPrefix(answers, "v=spf1")
	if spf == "" {
		check.Status = StatusCriticalMissing
		check.Absent = true
		check.CriticalActions = append(check.CriticalActions,
			fmt.Sprintf("Add an SPF record for %s authorizing Microsoft 365 (%s)", domain, SPFRequiredInclude))
		return check
	}

	if !strings.Contains(spf, SPFRequiredInclude) {
		check.Status = StatusInvalid
		check.CriticalActions = append(check.CriticalActions,
			fmt.Sprintf("SPF record for %s does not include %s", domain, SPFRequiredInclude))
		return check
	}

	check.Status = StatusOK
	check.Passed = true

	// Known limitation: this counts literal include: mechanisms in the
	// top-level record only. The RFC 7208 limit applies to the recursive
	// expansion, so nested includes are undercounted here.
	lookups := strings.Count(spf, "include:")
	if lookups > SPFMaxLookups {
		check.Recommendations = append(check.Recommendations,
			fmt.Sprintf("SPF record for %s lists %d include mechanisms, above the limit of %d; flatten it", domain, lookups, SPFMaxLookups))
	}

	return check
}

// CheckDMARC locates the DMARC policy record and verifies the policy is
// enforcing (anything stricter than p=none)
func (c Checker) CheckDMARC(ctx context.Context, domain string) Check {
	check := Check{Name: CheckDMARC, Applicable: true}

	answers, err := c.Resolver.Lookup(ctx, "_dmarc."+domain, records.TypeTXT)
	if err != nil {
		check.Status = fmt.Sprintf("Error: %v", err)
		return check
	}

	dmarc := findTXTWithPrefix(answers, "v=DMARC1")
	if dmarc == "" {
		check.Status = StatusCriticalMissing
		check.Absent = true
		check.CriticalActions = append(check.CriticalActions,
			fmt.Sprintf("Add a DMARC record at _dmarc.%s", domain))
		return check
	}

	policy := dmarcTag(dmarc, "p")
	if policy == "" || policy == "none" {
		check.Status = StatusInvalid
		check.Recommendations = append(check.Recommendations,
			fmt.Sprintf("Tighten the DMARC policy for %s from p=none to p=quarantine or p=reject", domain))
	} else {
		check.Status = StatusOK
		check.Passed = true
	}

	if dmarcTag(dmarc, "rua") == "" {
		check.Recommendations = append(check.Recommendations,
			fmt.Sprintf("Add a rua= aggregate report address to the DMARC record for %s", domain))
	}

	return check
}

// CheckDKIM verifies the Microsoft 365 signing selectors resolve. DKIM is
// enabled per-domain in the tenant, so absence is a posture gap rather
// than a blocking misconfiguration.
func (c Checker) CheckDKIM(ctx context.Context, domain string) Check {
	check := Check{Name: CheckDKIM, Applicable: true}

	var resolved int
	for _, sel := range []string{"selector1", "selector2"} {
		answers, err := c.Resolver.Lookup(ctx, sel+"._domainkey."+domain, records.TypeCNAME)
		if err != nil {
			check.Status = fmt.Sprintf("Error: %v", err)
			return check
		}
		if len(answers) > 0 {
			resolved++
		}
	}

	switch resolved {
	case 2:
		check.Status = StatusOK
		check.Passed = true
	case 0:
		check.Status = StatusCriticalMissing
		check.Absent = true
		check.Recommendations = append(check.Recommendations,
			fmt.Sprintf("Publish DKIM selector CNAMEs and enable signing for %s", domain))
	default:
		check.Status = StatusInvalid
		check.Recommendations = append(check.Recommendations,
			fmt.Sprintf("Only one DKIM selector resolves for %s; publish both selector1 and selector2", domain))
	}

	return check
}

// CheckDeprecated looks for records Microsoft has retired. The msoid
// CNAME breaks sign-in for some license types and must be removed
// whatever it currently points to.
func (c Checker) CheckDeprecated(ctx context.Context, domain string) Check {
	check := Check{Name: CheckDeprecated, Applicable: true}

	answers, err := c.Resolver.Lookup(ctx, "msoid."+domain, records.TypeCNAME)
	if err != nil {
		check.Status = fmt.Sprintf("Error: %v", err)
		return check
	}

	if len(answers) > 0 {
		check.Status = "Deprecated record found"
		check.CriticalActions = append(check.CriticalActions,
			fmt.Sprintf("Remove the deprecated msoid.%s CNAME record", domain))
		return check
	}

	check.Status = StatusOK
	check.Passed = true
	return check
}

// findTXTWithPrefix returns the first TXT answer whose joined text starts
// with the given prefix, or ""
func findTXTWithPrefix(answers []dnsquery.Answer, prefix string) string {
	for _, ans := range answers {
		txt, ok := ans.Value.(records.TXTValue)
		if !ok {
			continue
		}
		text := txt.Text()
		if strings.HasPrefix(strings.TrimSpace(text), prefix) {
			return text
		}
	}
	return ""
}

// dmarcTag extracts a tag value from a DMARC record's tag=value list
func dmarcTag(record, tag string) string {
	for _, part := range strings.Split(record, ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, tag+"=") {
			return strings.TrimSpace(strings.TrimPrefix(part, tag+"="))
		}
	}
	return ""
}
