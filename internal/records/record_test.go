package records

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFQDN(t *testing.T) {
	apex := ExpectedRecord{Domain: "contoso.com", Label: "@"}
	require.Equal(t, "contoso.com", apex.FQDN())

	blank := ExpectedRecord{Domain: "contoso.com"}
	require.Equal(t, "contoso.com", blank.FQDN())

	sub := ExpectedRecord{Domain: "contoso.com", Label: "autodiscover"}
	require.Equal(t, "autodiscover.contoso.com", sub.FQDN())

	deep := ExpectedRecord{Domain: "contoso.com", Label: "selector1._domainkey"}
	require.Equal(t, "selector1._domainkey.contoso.com", deep.FQDN())
}

func TestCanonicalHost(t *testing.T) {
	require.Equal(t, "contoso.com", CanonicalHost("Contoso.COM."))
	require.Equal(t, "contoso.com", CanonicalHost("  contoso.com  "))
	require.Equal(t, "", CanonicalHost(""))
}

func TestParseRecordType(t *testing.T) {
	rt, err := ParseRecordType(" mx ")
	require.NoError(t, err)
	require.Equal(t, TypeMX, rt)

	rt, err = ParseRecordType("cname")
	require.NoError(t, err)
	require.Equal(t, TypeCNAME, rt)

	_, err = ParseRecordType("NS")
	require.Error(t, err)
}

func TestValueRender(t *testing.T) {
	require.Equal(t, "0 contoso-com.mail.protection.outlook.com",
		MXValue{Preference: 0, Exchange: "contoso-com.mail.protection.outlook.com"}.Render())
	require.Equal(t, "autodiscover.outlook.com", CNAMEValue{Target: "autodiscover.outlook.com"}.Render())
	require.Equal(t, "ab", TXTValue{Segments: []string{"a", "b"}}.Render())
	require.Equal(t, "100 1 443 sipdir.online.lync.com",
		SRVValue{Priority: 100, Weight: 1, Port: 443, Target: "sipdir.online.lync.com"}.Render())
	require.Equal(t, "203.0.113.10", AddrValue{IP: "203.0.113.10"}.Render())
}

func TestQTypeMapsAreInverse(t *testing.T) {
	for rt, qtype := range QTypeMap {
		require.Equal(t, rt, QTypeReverseMap[qtype])
	}
}
