package records

import (
	"fmt"
	"strconv"
	"strings"
)

// Provider supplies the expected record set for a domain. Implementations
// exist for the built-in catalogue, CSV files, JSON files, and previously
// saved baseline snapshots; the comparison engine only ever sees the
// canonical ExpectedRecord rows a Provider returns.
type Provider interface {
	Records(domain string) ([]ExpectedRecord, error)
}

// ParseValue reconstructs a typed Value from its rendered single-string
// form, as stored in CSV columns, JSON fields and baseline snapshots.
//
// Per-type shapes:
//
//	MX    "<preference> <exchange>"
//	CNAME "<target>"
//	TXT   "<text>"
//	SRV   "<priority> <weight> <port> <target>"
//	A     "<ipv4>"
//	AAAA  "<ipv6>"
func ParseValue(rtype RecordType, s string) (Value, error) {
	s = strings.TrimSpace(s)

	switch rtype {
	case TypeMX:
		fields := strings.Fields(s)
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed MX value %q: want \"<preference> <exchange>\"", s)
		}
		pref, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("malformed MX preference %q: %w", fields[0], err)
		}
		return MXValue{Preference: pref, Exchange: CanonicalHost(fields[1])}, nil

	case TypeCNAME:
		if s == "" {
			return nil, fmt.Errorf("empty CNAME target")
		}
		return CNAMEValue{Target: CanonicalHost(s)}, nil

	case TypeTXT:
		return TXTValue{Segments: []string{s}}, nil

	case TypeSRV:
		fields := strings.Fields(s)
		if len(fields) != 4 {
			return nil, fmt.Errorf("malformed SRV value %q: want \"<priority> <weight> <port> <target>\"", s)
		}
		nums := make([]int, 3)
		for i := 0; i < 3; i++ {
			n, err := strconv.Atoi(fields[i])
			if err != nil {
				return nil, fmt.Errorf("malformed SRV field %q: %w", fields[i], err)
			}
			nums[i] = n
		}
		return SRVValue{Priority: nums[0], Weight: nums[1], Port: nums[2], Target: CanonicalHost(fields[3])}, nil

	case TypeA, TypeAAAA:
		if s == "" {
			return nil, fmt.Errorf("empty address value")
		}
		return AddrValue{IP: s}, nil

	default:
		return nil, fmt.Errorf("unsupported record type: %s", rtype)
	}
}

// parseOptional accepts the spellings of truth found in hand-edited files
func parseOptional(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "y":
		return true
	}
	return false
}

// parseTTL returns 0 for blank or unparseable TTL columns rather than
// failing the whole row; TTL is informational in the comparison
func parseTTL(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
