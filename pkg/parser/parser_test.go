package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLineA(t *testing.T) {
	record, ok := ParseLine("www.example.com. 3600 IN A 10.0.0.5")
	require.True(t, ok, "could not parse A record line")
	require.Equal(t, "www.example.com", record.Name)
	require.Equal(t, "A", record.Type)
	require.Equal(t, "10.0.0.5", record.Content)
}

func TestParseLineTabSeparated(t *testing.T) {
	// miekg/dns renders records with tab separators
	record, ok := ParseLine("www.example.com.\t3600\tIN\tAAAA\t2001:db8::1")
	require.True(t, ok, "could not parse tab separated line")
	require.Equal(t, "www.example.com", record.Name)
	require.Equal(t, "AAAA", record.Type)
	require.Equal(t, "2001:db8::1", record.Content)
}

func TestParseLineCNAMETrailingDot(t *testing.T) {
	record, ok := ParseLine("alias.example.com. 3600 IN CNAME canonical.example.com.")
	require.True(t, ok, "could not parse CNAME record line")
	require.Equal(t, "alias.example.com", record.Name)
	require.Equal(t, "CNAME", record.Type)
	require.Equal(t, "canonical.example.com", record.Content, "trailing dot should be trimmed")
}

func TestParseLineMXPriorityDiscarded(t *testing.T) {
	record, ok := ParseLine("example.com. 3600 IN MX 10 mail.example.com.")
	require.True(t, ok, "could not parse MX record line")
	require.Equal(t, "example.com", record.Name)
	require.Equal(t, "MX", record.Type)
	require.Equal(t, "mail.example.com", record.Content, "priority should be consumed")
}

func TestParseLineCaseInsensitive(t *testing.T) {
	record, ok := ParseLine("www.example.com. 3600 in a 10.0.0.5")
	require.True(t, ok, "could not parse lowercase line")
	require.Equal(t, "a", record.Type)
	require.Equal(t, "10.0.0.5", record.Content)
}

func TestParseLineSOA(t *testing.T) {
	record, ok := ParseLine("example.com. 3600 IN SOA ns1.example.com. hostmaster.example.com. 2024061801 7200 900 1209600 86400")
	require.True(t, ok, "could not parse SOA record line")
	require.Equal(t, "example.com", record.Name)
	require.Equal(t, "SOA", record.Type)
	require.Equal(t, "ns1.example.com. hostmaster.example.com. 2024061801 7200 900 1209600 86400", record.Content)
}

func TestParseLineUnknownTypeKept(t *testing.T) {
	// unsupported types still parse, classification reports them later
	record, ok := ParseLine("example.com. 3600 IN NAPTR some content")
	require.True(t, ok)
	require.Equal(t, "NAPTR", record.Type)

	_, known := ParseRecordType(record.Type)
	require.False(t, known, "NAPTR should not map to a known record type")
}

func TestParseLineRejectsNonRecords(t *testing.T) {
	lines := []string{
		"",
		"garbage line with no structure",
		"Trying \"example.com\"",
		";; Truncated, retrying in TCP mode.",
		"; Transfer failed.",
		"Received 282 bytes from 10.0.0.53#53 in 12 ms",
		"                2024061801 ; serial",
	}
	for _, line := range lines {
		_, ok := ParseLine(line)
		require.False(t, ok, "line %q should not parse", line)
	}
}

func TestParseRecordType(t *testing.T) {
	for token, expected := range map[string]RecordType{
		"A":     TypeA,
		"aaaa":  TypeAAAA,
		"Cname": TypeCNAME,
		"NS":    TypeNS,
		"MX":    TypeMX,
		"TXT":   TypeTXT,
		"SOA":   TypeSOA,
	} {
		rt, ok := ParseRecordType(token)
		require.True(t, ok, "token %q should be known", token)
		require.Equal(t, expected, rt)
	}

	_, ok := ParseRecordType("DNSKEY")
	require.False(t, ok)
}
