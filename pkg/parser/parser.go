package parser

import (
	"regexp"
	"strings"
)

// Record is a single resource record parsed from one line of zone
// transfer output. Type holds the raw type token from the line, use
// ParseRecordType to classify it.
type Record struct {
	Name    string
	Type    string
	Content string
}

// reEntry matches resource record lines of the shape
// `<owner>. <ttl> IN <TYPE> [<priority>] <content>`. The optional
// numeric field before the content covers MX style priorities, which
// are consumed and discarded. IN and the type token are matched
// case-insensitively.
var reEntry = regexp.MustCompile(`(?i)^(.+?)\.\s+\d+\s+IN\s+([A-Z]+)\s+(?:\d+\s)?(.+)$`)

// ParseLine parses a single line of zone transfer output into a
// Record. It returns false for lines that are not resource records:
// blank lines, comments, parenthesized SOA continuation lines and
// other tool chatter. That is expected in zone dumps and is not an
// error condition.
func ParseLine(line string) (Record, bool) {
	match := reEntry.FindStringSubmatch(line)
	if match == nil {
		return Record{}, false
	}
	return Record{
		Name:    strings.Trim(match[1], ". \t"),
		Type:    strings.TrimSpace(match[2]),
		Content: strings.Trim(match[3], ". \t"),
	}, true
}
