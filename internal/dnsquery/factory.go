package dnsquery

import (
	"fmt"
	"time"
)

// NewResolver creates a resolver for the chosen backend. Server pins the
// standard backend to a specific DNS server (empty = system default) and
// doubles as the endpoint override for the DoH backend.
func NewResolver(backend Backend, server string, timeout time.Duration) (Resolver, error) {
	switch backend {
	case BackendStandard:
		resolver, err := NewStandardResolver(server, timeout)
		if err != nil {
			return nil, fmt.Errorf("creating standard resolver: %w", err)
		}
		return resolver, nil
	case BackendDoH:
		return NewDoHResolver(server, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %v", backend)
	}
}
