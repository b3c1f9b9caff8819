package dnsquery

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/faanross/m365dns/internal/records"
	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

func header(name string, rtype uint16) dns.RR_Header {
	return dns.RR_Header{Name: name, Rrtype: rtype, Class: dns.ClassINET, Ttl: 3600}
}

func TestAnswersFromRRsNormalizesMX(t *testing.T) {
	rrs := []dns.RR{
		&dns.MX{Hdr: header("contoso.com.", dns.TypeMX), Preference: 10, Mx: "Contoso-COM.Mail.Protection.Outlook.Com."},
	}

	answers := answersFromRRs(rrs, records.TypeMX)
	require.Len(t, answers, 1)
	require.Equal(t, "contoso.com", answers[0].Name)
	require.Equal(t, uint32(3600), answers[0].TTL)
	require.Equal(t, records.MXValue{Preference: 10, Exchange: "contoso-com.mail.protection.outlook.com"}, answers[0].Value)
}

func TestAnswersFromRRsKeepsTXTSegments(t *testing.T) {
	rrs := []dns.RR{
		&dns.TXT{Hdr: header("contoso.com.", dns.TypeTXT), Txt: []string{"v=spf1 ", "-all"}},
	}

	answers := answersFromRRs(rrs, records.TypeTXT)
	require.Len(t, answers, 1)
	require.Equal(t, records.TXTValue{Segments: []string{"v=spf1 ", "-all"}}, answers[0].Value)
}

func TestAnswersFromRRsFiltersMixedSections(t *testing.T) {
	// A resolver chasing a CNAME returns both records; only the queried
	// type may survive
	rrs := []dns.RR{
		&dns.CNAME{Hdr: header("www.contoso.com.", dns.TypeCNAME), Target: "contoso.com."},
		&dns.A{Hdr: header("contoso.com.", dns.TypeA), A: net.ParseIP("203.0.113.10")},
	}

	aAnswers := answersFromRRs(rrs, records.TypeA)
	require.Len(t, aAnswers, 1)
	require.Equal(t, records.AddrValue{IP: "203.0.113.10"}, aAnswers[0].Value)

	cnameAnswers := answersFromRRs(rrs, records.TypeCNAME)
	require.Len(t, cnameAnswers, 1)
	require.Equal(t, records.CNAMEValue{Target: "contoso.com"}, cnameAnswers[0].Value)
}

func TestAnswersFromRRsSRV(t *testing.T) {
	rrs := []dns.RR{
		&dns.SRV{Hdr: header("_sip._tls.contoso.com.", dns.TypeSRV), Priority: 100, Weight: 1, Port: 443, Target: "sipdir.online.lync.com."},
	}

	answers := answersFromRRs(rrs, records.TypeSRV)
	require.Len(t, answers, 1)
	require.Equal(t, records.SRVValue{Priority: 100, Weight: 1, Port: 443, Target: "sipdir.online.lync.com"}, answers[0].Value)
}

func TestEnsurePort(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"8.8.8.8", "8.8.8.8:53"},
		{"8.8.8.8:5353", "8.8.8.8:5353"},
		{"2001:4860:4860::8888", "[2001:4860:4860::8888]:53"},
		{"[2001:4860:4860::8888]:53", "[2001:4860:4860::8888]:53"},
		{"[2001:4860:4860::8888]", "[2001:4860:4860::8888]:53"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ensurePort(tt.in), "input %q", tt.in)
	}
}

func TestStandardLookupUnderscoreNameUnanswered(t *testing.T) {
	// 192.0.2.1 (TEST-NET-1) never answers; the underscore name must make
	// it past encoding and report absence, not a mechanism fault
	resolver, err := NewStandardResolver("192.0.2.1", 50*time.Millisecond)
	require.NoError(t, err)

	answers, qerr := resolver.Lookup(context.Background(), "_dmarc.contoso.com", records.TypeTXT)
	require.NoError(t, qerr)
	require.Nil(t, answers)
}

func TestNewStandardResolverPinsServer(t *testing.T) {
	resolver, err := NewStandardResolver("9.9.9.9", 0)
	require.NoError(t, err)
	require.Equal(t, "9.9.9.9:53", resolver.Server())
}
