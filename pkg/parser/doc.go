// Package parser is a package for parsing the textual output of DNS
// zone transfer queries, as produced by the `host -t axfr` command or
// by rendering raw resource records in zone file presentation format.
//
// Each resource record line is parsed into an owner name, a record
// type token and the record content. Lines that don't look like
// resource records (comments, blank lines, multi-line SOA bodies)
// are skipped. Type tokens are kept verbatim so that unknown types
// can be reported during classification instead of being silently
// dropped here.
package parser
