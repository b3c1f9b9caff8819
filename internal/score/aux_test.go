package score

import (
	"context"
	"fmt"
	"testing"

	"github.com/faanross/m365dns/internal/dnsquery"
	"github.com/faanross/m365dns/internal/records"
	"github.com/stretchr/testify/require"
)

// fakeResolver serves canned answers keyed by query name
type fakeResolver struct {
	answers map[string][]dnsquery.Answer
	errs    map[string]error
}

func (f *fakeResolver) Lookup(_ context.Context, name string, _ records.RecordType) ([]dnsquery.Answer, error) {
	if err, ok := f.errs[name]; ok {
		return nil, err
	}
	return f.answers[name], nil
}

func txtAt(name, text string) []dnsquery.Answer {
	return []dnsquery.Answer{{
		Name:  name,
		Type:  records.TypeTXT,
		Value: records.TXTValue{Segments: []string{text}},
	}}
}

func cnameAt(name, target string) []dnsquery.Answer {
	return []dnsquery.Answer{{
		Name:  name,
		Type:  records.TypeCNAME,
		Value: records.CNAMEValue{Target: target},
	}}
}

func TestCheckSPFMissing(t *testing.T) {
	checker := Checker{Resolver: &fakeResolver{}}

	check := checker.CheckSPF(context.Background(), "contoso.com")

	require.True(t, check.Applicable)
	require.False(t, check.Passed)
	require.True(t, check.Absent)
	require.Equal(t, StatusCriticalMissing, check.Status)
	require.Len(t, check.CriticalActions, 1)
	require.Empty(t, check.Recommendations)
}

func TestCheckSPFWithoutM365Include(t *testing.T) {
	checker := Checker{Resolver: &fakeResolver{
		answers: map[string][]dnsquery.Answer{
			"contoso.com": txtAt("contoso.com", "v=spf1 include:_spf.example.org -all"),
		},
	}}

	check := checker.CheckSPF(context.Background(), "contoso.com")

	require.False(t, check.Passed)
	require.False(t, check.Absent)
	require.Equal(t, StatusInvalid, check.Status)
	require.Contains(t, check.CriticalActions[0], "spf.protection.outlook.com")
}

func TestCheckSPFPasses(t *testing.T) {
	checker := Checker{Resolver: &fakeResolver{
		answers: map[string][]dnsquery.Answer{
			"contoso.com": txtAt("contoso.com", "v=spf1 include:spf.protection.outlook.com -all"),
		},
	}}

	check := checker.CheckSPF(context.Background(), "contoso.com")

	require.True(t, check.Passed)
	require.Equal(t, StatusOK, check.Status)
	require.Empty(t, check.CriticalActions)
	require.Empty(t, check.Recommendations)
}

func TestCheckSPFLookupCountApproximation(t *testing.T) {
	// Eleven literal include: mechanisms at the top level trip the
	// recommendation; nested includes are deliberately not expanded
	spf := "v=spf1"
	for i := 0; i < 10; i++ {
		spf += fmt.Sprintf(" include:s%d.example.org", i)
	}
	spf += " include:spf.protection.outlook.com -all"

	checker := Checker{Resolver: &fakeResolver{
		answers: map[string][]dnsquery.Answer{
			"contoso.com": txtAt("contoso.com", spf),
		},
	}}

	check := checker.CheckSPF(context.Background(), "contoso.com")

	require.True(t, check.Passed)
	require.Len(t, check.Recommendations, 1)
	require.Contains(t, check.Recommendations[0], "11")
}

func TestCheckSPFIgnoresUnrelatedTXT(t *testing.T) {
	checker := Checker{Resolver: &fakeResolver{
		answers: map[string][]dnsquery.Answer{
			"contoso.com": {
				{Name: "contoso.com", Type: records.TypeTXT, Value: records.TXTValue{Segments: []string{"ms=ms12345"}}},
				{Name: "contoso.com", Type: records.TypeTXT, Value: records.TXTValue{Segments: []string{"v=spf1 include:spf.protection.outlook.com -all"}}},
			},
		},
	}}

	check := checker.CheckSPF(context.Background(), "contoso.com")
	require.True(t, check.Passed)
}

func TestCheckDMARCMissingIsCritical(t *testing.T) {
	checker := Checker{Resolver: &fakeResolver{}}

	check := checker.CheckDMARC(context.Background(), "contoso.com")

	require.Equal(t, StatusCriticalMissing, check.Status)
	require.True(t, check.Absent)
	require.Len(t, check.CriticalActions, 1)
	require.Contains(t, check.CriticalActions[0], "_dmarc.contoso.com")
}

func TestCheckDMARCPolicyNoneIsRecommendation(t *testing.T) {
	checker := Checker{Resolver: &fakeResolver{
		answers: map[string][]dnsquery.Answer{
			"_dmarc.contoso.com": txtAt("_dmarc.contoso.com", "v=DMARC1; p=none; rua=mailto:dmarc@contoso.com"),
		},
	}}

	check := checker.CheckDMARC(context.Background(), "contoso.com")

	// Lax policy is a posture improvement, never a critical action
	require.False(t, check.Passed)
	require.False(t, check.Absent)
	require.Empty(t, check.CriticalActions)
	require.Len(t, check.Recommendations, 1)
	require.Contains(t, check.Recommendations[0], "p=none")
}

func TestCheckDMARCMissingRuaIsRecommendation(t *testing.T) {
	checker := Checker{Resolver: &fakeResolver{
		answers: map[string][]dnsquery.Answer{
			"_dmarc.contoso.com": txtAt("_dmarc.contoso.com", "v=DMARC1; p=reject"),
		},
	}}

	check := checker.CheckDMARC(context.Background(), "contoso.com")

	require.True(t, check.Passed)
	require.Len(t, check.Recommendations, 1)
	require.Contains(t, check.Recommendations[0], "rua=")
}

func TestCheckDKIMBothSelectors(t *testing.T) {
	checker := Checker{Resolver: &fakeResolver{
		answers: map[string][]dnsquery.Answer{
			"selector1._domainkey.contoso.com": cnameAt("selector1._domainkey.contoso.com", "selector1-contoso-com._domainkey.contoso.onmicrosoft.com"),
			"selector2._domainkey.contoso.com": cnameAt("selector2._domainkey.contoso.com", "selector2-contoso-com._domainkey.contoso.onmicrosoft.com"),
		},
	}}

	check := checker.CheckDKIM(context.Background(), "contoso.com")
	require.True(t, check.Passed)
	require.Equal(t, StatusOK, check.Status)
}

func TestCheckDKIMSingleSelector(t *testing.T) {
	checker := Checker{Resolver: &fakeResolver{
		answers: map[string][]dnsquery.Answer{
			"selector1._domainkey.contoso.com": cnameAt("selector1._domainkey.contoso.com", "selector1-contoso-com._domainkey.contoso.onmicrosoft.com"),
		},
	}}

	check := checker.CheckDKIM(context.Background(), "contoso.com")
	require.False(t, check.Passed)
	require.Equal(t, StatusInvalid, check.Status)
	require.Len(t, check.Recommendations, 1)
}

func TestCheckDeprecatedMsoidVerbatim(t *testing.T) {
	// The action text must not depend on what the record points to
	targets := []string{"clientconfig.microsoftonline-p.net", "anything.example.org"}

	var actions []string
	for _, target := range targets {
		checker := Checker{Resolver: &fakeResolver{
			answers: map[string][]dnsquery.Answer{
				"msoid.contoso.com": cnameAt("msoid.contoso.com", target),
			},
		}}
		check := checker.CheckDeprecated(context.Background(), "contoso.com")

		require.False(t, check.Passed)
		require.Len(t, check.CriticalActions, 1)
		actions = append(actions, check.CriticalActions[0])
	}

	require.Equal(t, actions[0], actions[1])
}

func TestCheckDeprecatedAbsentPasses(t *testing.T) {
	checker := Checker{Resolver: &fakeResolver{}}

	check := checker.CheckDeprecated(context.Background(), "contoso.com")
	require.True(t, check.Passed)
	require.Empty(t, check.CriticalActions)
}
