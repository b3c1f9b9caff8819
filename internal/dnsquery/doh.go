package dnsquery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/faanross/m365dns/internal/records"
	"github.com/miekg/dns"
)

// DefaultDoHEndpoint is the public JSON resolver queried when no
// endpoint override is configured
const DefaultDoHEndpoint = "https://dns.google/resolve"

// dohResponse mirrors the JSON scheme shared by Google and Cloudflare:
// https://developers.google.com/speed/public-dns/docs/doh/json
type dohResponse struct {
	Status int `json:"Status"` // standard DNS response code
	Answer []struct {
		Name string `json:"name"`
		Type uint16 `json:"type"`
		TTL  uint32 `json:"TTL"`
		Data string `json:"data"`
	} `json:"Answer"`
}

// DoHResolver queries a DNS-over-HTTPS JSON endpoint and reconstructs
// answers shaped identically to the standard backend's output
type DoHResolver struct {
	endpoint string
	client   *http.Client
}

// NewDoHResolver creates a resolver against the given JSON endpoint.
// An empty endpoint selects DefaultDoHEndpoint.
func NewDoHResolver(endpoint string, timeout time.Duration) *DoHResolver {
	if endpoint == "" {
		endpoint = DefaultDoHEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &DoHResolver{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the JSON endpoint queries are sent to
func (r *DoHResolver) Endpoint() string { return r.endpoint }

// Lookup implements the Resolver interface over DNS-over-HTTPS
func (r *DoHResolver) Lookup(ctx context.Context, name string, rtype records.RecordType) ([]Answer, error) {
	qtype, ok := records.QTypeMap[rtype]
	if !ok {
		return nil, fmt.Errorf("unsupported record type: %s", rtype)
	}

	punyName, err := encodeName(name)
	if err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s?name=%s&type=%s",
		r.endpoint, url.QueryEscape(punyName), url.QueryEscape(string(rtype)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building DoH request: %w", err)
	}
	req.Header.Set("Accept", "application/dns-json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("DoH request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DoH endpoint returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading DoH response: %w", err)
	}

	var parsed dohResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing DoH response: %w", err)
	}

	// NXDOMAIN and friends are absence, not a mechanism fault
	if parsed.Status != dns.RcodeSuccess {
		return nil, nil
	}

	var answers []Answer
	for _, ans := range parsed.Answer {
		if ans.Type != qtype {
			continue
		}
		value, err := parseDoHData(rtype, ans.Data)
		if err != nil {
			return nil, fmt.Errorf("malformed DoH answer %q: %w", ans.Data, err)
		}
		answers = append(answers, Answer{
			Name:  records.CanonicalHost(ans.Name),
			Type:  rtype,
			TTL:   ans.TTL,
			Value: value,
		})
	}

	return answers, nil
}

// parseDoHData reconstructs a typed value from the textual rdata the JSON
// API returns, matching what the standard backend produces for the same
// record (trailing root dots stripped, MX data split into its two fields)
func parseDoHData(rtype records.RecordType, data string) (records.Value, error) {
	data = strings.TrimSpace(data)

	switch rtype {
	case records.TypeMX:
		fields := strings.Fields(data)
		if len(fields) != 2 {
			return nil, fmt.Errorf("want \"<preference> <exchange>\"")
		}
		pref, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, err
		}
		return records.MXValue{Preference: pref, Exchange: records.CanonicalHost(fields[1])}, nil

	case records.TypeCNAME:
		return records.CNAMEValue{Target: records.CanonicalHost(data)}, nil

	case records.TypeTXT:
		return records.TXTValue{Segments: splitTXTData(data)}, nil

	case records.TypeSRV:
		fields := strings.Fields(data)
		if len(fields) != 4 {
			return nil, fmt.Errorf("want \"<priority> <weight> <port> <target>\"")
		}
		nums := make([]int, 3)
		for i := 0; i < 3; i++ {
			n, err := strconv.Atoi(fields[i])
			if err != nil {
				return nil, err
			}
			nums[i] = n
		}
		return records.SRVValue{
			Priority: nums[0],
			Weight:   nums[1],
			Port:     nums[2],
			Target:   records.CanonicalHost(fields[3]),
		}, nil

	case records.TypeA, records.TypeAAAA:
		return records.AddrValue{IP: data}, nil

	default:
		return nil, fmt.Errorf("unsupported record type: %s", rtype)
	}
}

// splitTXTData undoes the quoting the JSON API applies to TXT rdata.
// A record split into multiple character-strings arrives as
// `"seg one" "seg two"`; an unquoted payload is a single segment.
func splitTXTData(data string) []string {
	if !strings.Contains(data, `"`) {
		return []string{data}
	}

	var segments []string
	parts := strings.Split(data, `"`)
	// Odd indices hold the quoted contents, even indices the separators
	for i := 1; i < len(parts); i += 2 {
		segments = append(segments, parts[i])
	}
	if len(segments) == 0 {
		return []string{data}
	}
	return segments
}
