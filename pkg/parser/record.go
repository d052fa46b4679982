package parser

import "strings"

// RecordType is a DNS resource record type recognized by the classifier.
type RecordType int

const (
	TypeA RecordType = iota
	TypeAAAA
	TypeCNAME
	TypeNS
	TypeMX
	TypeTXT
	TypeSOA
	TypePTR
	TypeSRV
	TypeCAA
)

var recordTypes = map[string]RecordType{
	"A":     TypeA,
	"AAAA":  TypeAAAA,
	"CNAME": TypeCNAME,
	"NS":    TypeNS,
	"MX":    TypeMX,
	"TXT":   TypeTXT,
	"SOA":   TypeSOA,
	"PTR":   TypePTR,
	"SRV":   TypeSRV,
	"CAA":   TypeCAA,
}

// ParseRecordType maps a type token from a zone line to a RecordType.
// The token is matched case-insensitively. Tokens without a mapping
// return false so the caller can report them instead of dropping the
// whole record silently.
func ParseRecordType(token string) (RecordType, bool) {
	rt, ok := recordTypes[strings.ToUpper(strings.TrimSpace(token))]
	return rt, ok
}

// String returns the canonical uppercase token for the record type.
func (r RecordType) String() string {
	switch r {
	case TypeA:
		return "A"
	case TypeAAAA:
		return "AAAA"
	case TypeCNAME:
		return "CNAME"
	case TypeNS:
		return "NS"
	case TypeMX:
		return "MX"
	case TypeTXT:
		return "TXT"
	case TypeSOA:
		return "SOA"
	case TypePTR:
		return "PTR"
	case TypeSRV:
		return "SRV"
	case TypeCAA:
		return "CAA"
	}
	return "UNKNOWN"
}
