package dnsquery

import (
	"context"
	"fmt"
	"time"

	"github.com/faanross/m365dns/internal/records"
	"github.com/miekg/dns"
)

// DefaultQueryTimeout bounds a single query round-trip when the caller
// does not configure one
const DefaultQueryTimeout = 5 * time.Second

// StandardResolver queries a classic DNS server over UDP (with a TCP
// retry when the response is truncated). The server can be pinned by the
// caller; otherwise the host's configured resolver is used.
type StandardResolver struct {
	server string
	udp    *dns.Client
	tcp    *dns.Client
}

// NewStandardResolver creates a resolver against the given "host:port"
// server address. An empty server selects the system default resolver.
func NewStandardResolver(server string, timeout time.Duration) (*StandardResolver, error) {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}

	var err error
	if server == "" {
		server, err = SystemResolverAddr()
		if err != nil {
			return nil, fmt.Errorf("determining system resolver: %w", err)
		}
	} else {
		server = ensurePort(server)
	}

	return &StandardResolver{
		server: server,
		udp:    &dns.Client{Net: "udp", Timeout: timeout},
		tcp:    &dns.Client{Net: "tcp", Timeout: timeout},
	}, nil
}

// Server returns the resolver address queries are sent to
func (r *StandardResolver) Server() string { return r.server }

// Lookup implements the Resolver interface over plain DNS
func (r *StandardResolver) Lookup(ctx context.Context, name string, rtype records.RecordType) ([]Answer, error) {
	qtype, ok := records.QTypeMap[rtype]
	if !ok {
		return nil, fmt.Errorf("unsupported record type: %s", rtype)
	}

	punyName, err := encodeName(name)
	if err != nil {
		return nil, err
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(punyName), qtype)
	msg.RecursionDesired = true

	resp, _, err := r.udp.ExchangeContext(ctx, msg, r.server)
	if err != nil {
		// An unanswered query is reported as absence; the comparison
		// layer renders it as "(not found)" rather than aborting
		return nil, nil
	}

	// Retry over TCP when the UDP response was truncated
	if resp.Truncated {
		resp, _, err = r.tcp.ExchangeContext(ctx, msg, r.server)
		if err != nil {
			return nil, nil
		}
	}

	if resp.Rcode != dns.RcodeSuccess {
		return nil, nil
	}

	return answersFromRRs(resp.Answer, rtype), nil
}

// answersFromRRs keeps only answer-section records matching the queried
// type and normalizes each into the backend-agnostic Answer shape
func answersFromRRs(rrs []dns.RR, rtype records.RecordType) []Answer {
	var answers []Answer

	for _, rr := range rrs {
		// Resolvers may chase aliases and return a mixed answer section;
		// only records of the queried type survive normalization
		if records.QTypeReverseMap[rr.Header().Rrtype] != rtype {
			continue
		}

		var value records.Value

		switch rec := rr.(type) {
		case *dns.MX:
			value = records.MXValue{
				Preference: int(rec.Preference),
				Exchange:   records.CanonicalHost(rec.Mx),
			}
		case *dns.CNAME:
			value = records.CNAMEValue{Target: records.CanonicalHost(rec.Target)}
		case *dns.TXT:
			value = records.TXTValue{Segments: rec.Txt}
		case *dns.SRV:
			value = records.SRVValue{
				Priority: int(rec.Priority),
				Weight:   int(rec.Weight),
				Port:     int(rec.Port),
				Target:   records.CanonicalHost(rec.Target),
			}
		case *dns.A:
			value = records.AddrValue{IP: rec.A.String()}
		case *dns.AAAA:
			value = records.AddrValue{IP: rec.AAAA.String()}
		default:
			continue
		}

		answers = append(answers, Answer{
			Name:  records.CanonicalHost(rr.Header().Name),
			Type:  rtype,
			TTL:   rr.Header().Ttl,
			Value: value,
		})
	}

	return answers
}
