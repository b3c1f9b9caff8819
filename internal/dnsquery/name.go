package dnsquery

import (
	"fmt"

	"golang.org/x/net/idna"
)

// lookupProfile maps query names for lookup without STD3 ASCII rules.
// The strict profile rejects U+005F, and the names this tool queries
// most (_sip._tls, _sipfederationtls._tcp, _dmarc, selector1._domainkey)
// all carry underscore labels.
var lookupProfile = idna.New(idna.MapForLookup(), idna.StrictDomainName(false))

// encodeName converts a query name to its ASCII (punycode) form. A name
// that cannot be encoded is a caller fault, not a missing record.
func encodeName(name string) (string, error) {
	puny, err := lookupProfile.ToASCII(name)
	if err != nil {
		return "", fmt.Errorf("invalid query name %q: %w", name, err)
	}
	return puny, nil
}
