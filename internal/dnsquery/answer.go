package dnsquery

import (
	"context"

	"github.com/faanross/m365dns/internal/records"
)

// Answer is one normalized resolver response record. Both backends produce
// the same shape for the same record type, so consumers never branch on
// which backend answered.
type Answer struct {
	Name  string
	Type  records.RecordType
	TTL   uint32
	Value records.Value
}

// Resolver issues a DNS query for a (name, type) pair.
//
// Lookup returns (nil, nil) when the name does not exist, the answer
// section is empty, or the network did not answer in time; absence is
// data, not an error. A non-nil error means the query mechanism itself
// faulted (malformed name, unsupported type, transport failure against a
// DoH endpoint) and the caller should report it rather than treat the
// record as missing.
type Resolver interface {
	Lookup(ctx context.Context, name string, rtype records.RecordType) ([]Answer, error)
}

// Backend selects which resolver implementation to use
type Backend string

const (
	BackendStandard Backend = "standard"
	BackendDoH      Backend = "doh"
)
