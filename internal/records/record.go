package records

import (
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// RecordType identifies the DNS record types this tool understands
type RecordType string

const (
	TypeMX    RecordType = "MX"
	TypeCNAME RecordType = "CNAME"
	TypeTXT   RecordType = "TXT"
	TypeSRV   RecordType = "SRV"
	TypeA     RecordType = "A"
	TypeAAAA  RecordType = "AAAA"
)

// QTypeMap converts our record type strings to those found in miekg package
var QTypeMap = map[RecordType]uint16{
	TypeMX:    dns.TypeMX,
	TypeCNAME: dns.TypeCNAME,
	TypeTXT:   dns.TypeTXT,
	TypeSRV:   dns.TypeSRV,
	TypeA:     dns.TypeA,
	TypeAAAA:  dns.TypeAAAA,
}

// QTypeReverseMap converts miekg qtype values back to our record type strings
var QTypeReverseMap = func() map[uint16]RecordType {
	m := make(map[uint16]RecordType, len(QTypeMap))
	for k, v := range QTypeMap {
		m[v] = k
	}
	return m
}()

// ParseRecordType converts a free-form string (e.g. from a CSV column or a
// CLI flag) into a RecordType
func ParseRecordType(s string) (RecordType, error) {
	rt := RecordType(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := QTypeMap[rt]; !ok {
		return "", fmt.Errorf("unsupported record type: %s", s)
	}
	return rt, nil
}

// Value is the type-specific payload of an expected or actual record.
// Concrete implementations: MXValue, CNAMEValue, TXTValue, SRVValue, AddrValue.
type Value interface {
	// Render returns the canonical single-string form used for display,
	// serialization, and cross-resolver comparison
	Render() string
}

// MXValue holds a mail exchange record payload
type MXValue struct {
	Preference int
	Exchange   string
}

func (v MXValue) Render() string {
	return fmt.Sprintf("%d %s", v.Preference, v.Exchange)
}

// CNAMEValue holds an alias record payload
type CNAMEValue struct {
	Target string
}

func (v CNAMEValue) Render() string { return v.Target }

// TXTValue holds a text record payload. A single TXT answer may be split
// into multiple character-string segments on the wire; they are joined
// without a separator for comparison.
type TXTValue struct {
	Segments []string
}

func (v TXTValue) Render() string { return strings.Join(v.Segments, "") }

// Text returns the joined segments (same as Render, named for call sites
// where the TXT semantics matter)
func (v TXTValue) Text() string { return v.Render() }

// SRVValue holds a service locator record payload
type SRVValue struct {
	Priority int
	Weight   int
	Port     int
	Target   string
}

func (v SRVValue) Render() string {
	return fmt.Sprintf("%d %d %d %s", v.Priority, v.Weight, v.Port, v.Target)
}

// AddrValue holds an A or AAAA record payload
type AddrValue struct {
	IP string
}

func (v AddrValue) Render() string { return v.IP }

// ExpectedRecord is one row of "what should exist" in a domain's zone.
// Every provider (built-in catalogue, CSV, JSON, baseline snapshot)
// maps its source shape into this one canonical type.
type ExpectedRecord struct {
	Domain   string
	Label    string // "@" denotes the domain apex
	Type     RecordType
	Value    Value
	Optional bool
	TTL      int
	Service  string // e.g. "Email", "Teams", "MDM"
}

// FQDN computes the fully qualified name this record should live at
func (r ExpectedRecord) FQDN() string {
	if r.Label == "@" || r.Label == "" {
		return r.Domain
	}
	return r.Label + "." + r.Domain
}

// CanonicalHost lower-cases a hostname and strips the trailing root dot,
// so values from different resolvers and sources compare equal
func CanonicalHost(host string) string {
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(host), "."))
}
