// Package scope tracks the domains that are in scope for an
// assessment and provides host name validation and free-text domain
// extraction against them. Extraction is heuristic on purpose: NS, MX
// or TXT record contents embed host names without a rigid grammar.
package scope

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	sliceutil "github.com/projectdiscovery/utils/slice"
	"github.com/weppos/publicsuffix-go/publicsuffix"
)

// ErrNoDomains is returned when a scope is created without any domain.
var ErrNoDomains = errors.New("no in-scope domains provided")

// reLabel matches a single DNS label. Underscores are allowed since
// they show up in service records and are common in real zones.
var reLabel = regexp.MustCompile(`^[a-zA-Z0-9_]([a-zA-Z0-9_-]*[a-zA-Z0-9_])?$`)

// Scope holds the set of in-scope domains together with one compiled
// extraction pattern per domain.
type Scope struct {
	domains  []string
	patterns map[string]*regexp.Regexp
}

// New creates a scope from the given domains. Every domain must be a
// registrable domain name (e.g. example.com, not com), validated
// against the public suffix list. Domains are normalized to lowercase
// without a trailing dot.
func New(domains []string) (*Scope, error) {
	if len(domains) == 0 {
		return nil, ErrNoDomains
	}

	scope := &Scope{
		patterns: make(map[string]*regexp.Regexp),
	}
	for _, domain := range domains {
		domain = strings.ToLower(strings.Trim(strings.TrimSpace(domain), "."))
		if domain == "" {
			continue
		}
		if _, err := publicsuffix.Domain(domain); err != nil {
			return nil, fmt.Errorf("invalid scope domain %q: %w", domain, err)
		}
		if _, ok := scope.patterns[domain]; ok {
			continue
		}
		// Matches any host name ending in the domain, including the
		// bare domain itself.
		pattern, err := regexp.Compile(`(?i)(?:[a-z0-9_](?:[a-z0-9_-]*[a-z0-9_])?\.)*` + regexp.QuoteMeta(domain))
		if err != nil {
			return nil, fmt.Errorf("could not compile pattern for domain %q: %w", domain, err)
		}
		scope.domains = append(scope.domains, domain)
		scope.patterns[domain] = pattern
	}
	if len(scope.domains) == 0 {
		return nil, ErrNoDomains
	}
	return scope, nil
}

// Domains returns the normalized in-scope domains.
func (s *Scope) Domains() []string {
	return s.domains
}

// ResolveHostName normalizes a host name and resolves the in-scope
// domain it belongs to. It returns false when the name is empty,
// malformed or outside every in-scope domain.
func (s *Scope) ResolveHostName(name string) (normalized string, domain string, ok bool) {
	name = strings.ToLower(strings.Trim(strings.TrimSpace(name), "."))
	if name == "" || len(name) > 253 {
		return "", "", false
	}
	for _, label := range strings.Split(name, ".") {
		if len(label) > 63 || !reLabel.MatchString(label) {
			return "", "", false
		}
	}
	for _, domain := range s.domains {
		if name == domain || strings.HasSuffix(name, "."+domain) {
			return name, domain, true
		}
	}
	return "", "", false
}

// InScope reports whether the name normalizes to a host name under
// one of the in-scope domains.
func (s *Scope) InScope(name string) bool {
	_, _, ok := s.ResolveHostName(name)
	return ok
}

// ExtractDomains scans free text for substrings that look like host
// names under any in-scope domain. Candidates are returned normalized
// and deduplicated, in match order.
func (s *Scope) ExtractDomains(text string) []string {
	var found []string
	for _, domain := range s.domains {
		for _, loc := range s.patterns[domain].FindAllStringIndex(text, -1) {
			if !standalone(text, loc[0], loc[1]) {
				continue
			}
			if normalized, _, ok := s.ResolveHostName(text[loc[0]:loc[1]]); ok {
				found = append(found, normalized)
			}
		}
	}
	return sliceutil.Dedupe(found)
}

// standalone reports whether the match at text[start:end] is a whole
// host name rather than the tail of a longer one (notexample.com) or
// a prefix of one under another domain (example.com.evil.net).
func standalone(text string, start, end int) bool {
	if start > 0 && isNameByte(text[start-1]) {
		return false
	}
	if end < len(text) && isNameByte(text[end]) {
		return false
	}
	if end+1 < len(text) && text[end] == '.' && isNameByte(text[end+1]) {
		return false
	}
	return true
}

func isNameByte(b byte) bool {
	return b == '-' || b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
