package records

import (
	"fmt"
	"strings"
)

// Service labels used by the built-in catalogue
const (
	ServiceEmail = "Email"
	ServiceTeams = "Teams"
	ServiceMDM   = "MDM"
)

// DashedDomain converts "contoso.com" into the "contoso-com" form that
// Microsoft embeds in mail protection and DKIM hostnames
func DashedDomain(domain string) string {
	return strings.ReplaceAll(CanonicalHost(domain), ".", "-")
}

// Catalog generates the canonical set of records Microsoft 365 expects a
// domain to publish. Tenant is the *.onmicrosoft.com tenant name (without
// the suffix) used to derive DKIM targets; when empty the DKIM rows are
// omitted because their targets cannot be computed.
type Catalog struct {
	Tenant string
}

// Records implements the Provider interface for the built-in catalogue
func (c Catalog) Records(domain string) ([]ExpectedRecord, error) {
	domain = CanonicalHost(domain)
	if domain == "" {
		return nil, fmt.Errorf("empty domain")
	}
	dashed := DashedDomain(domain)

	recs := []ExpectedRecord{
		{
			Domain:  domain,
			Label:   "@",
			Type:    TypeMX,
			Value:   MXValue{Preference: 0, Exchange: dashed + ".mail.protection.outlook.com"},
			TTL:     3600,
			Service: ServiceEmail,
		},
		{
			Domain:  domain,
			Label:   "autodiscover",
			Type:    TypeCNAME,
			Value:   CNAMEValue{Target: "autodiscover.outlook.com"},
			TTL:     3600,
			Service: ServiceEmail,
		},
		{
			Domain:  domain,
			Label:   "@",
			Type:    TypeTXT,
			Value:   TXTValue{Segments: []string{"v=spf1 include:spf.protection.outlook.com -all"}},
			TTL:     3600,
			Service: ServiceEmail,
		},
	}

	if c.Tenant != "" {
		tenant := CanonicalHost(c.Tenant)
		for _, sel := range []string{"selector1", "selector2"} {
			recs = append(recs, ExpectedRecord{
				Domain:   domain,
				Label:    sel + "._domainkey",
				Type:     TypeCNAME,
				Value:    CNAMEValue{Target: fmt.Sprintf("%s-%s._domainkey.%s.onmicrosoft.com", sel, dashed, tenant)},
				Optional: true,
				TTL:      3600,
				Service:  ServiceEmail,
			})
		}
	}

	recs = append(recs,
		ExpectedRecord{
			Domain:   domain,
			Label:    "_sip._tls",
			Type:     TypeSRV,
			Value:    SRVValue{Priority: 100, Weight: 1, Port: 443, Target: "sipdir.online.lync.com"},
			Optional: true,
			TTL:      3600,
			Service:  ServiceTeams,
		},
		ExpectedRecord{
			Domain:   domain,
			Label:    "_sipfederationtls._tcp",
			Type:     TypeSRV,
			Value:    SRVValue{Priority: 100, Weight: 1, Port: 5061, Target: "sipfed.online.lync.com"},
			Optional: true,
			TTL:      3600,
			Service:  ServiceTeams,
		},
		ExpectedRecord{
			Domain:   domain,
			Label:    "sip",
			Type:     TypeCNAME,
			Value:    CNAMEValue{Target: "sipdir.online.lync.com"},
			Optional: true,
			TTL:      3600,
			Service:  ServiceTeams,
		},
		ExpectedRecord{
			Domain:   domain,
			Label:    "lyncdiscover",
			Type:     TypeCNAME,
			Value:    CNAMEValue{Target: "webdir.online.lync.com"},
			Optional: true,
			TTL:      3600,
			Service:  ServiceTeams,
		},
		ExpectedRecord{
			Domain:   domain,
			Label:    "enterpriseregistration",
			Type:     TypeCNAME,
			Value:    CNAMEValue{Target: "enterpriseregistration.windows.net"},
			Optional: true,
			TTL:      3600,
			Service:  ServiceMDM,
		},
		ExpectedRecord{
			Domain:   domain,
			Label:    "enterpriseenrollment",
			Type:     TypeCNAME,
			Value:    CNAMEValue{Target: "enterpriseenrollment.manage.microsoft.com"},
			Optional: true,
			TTL:      3600,
			Service:  ServiceMDM,
		},
	)

	return recs, nil
}
