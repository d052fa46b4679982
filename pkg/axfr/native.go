package axfr

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/retryabledns"
	sliceutil "github.com/projectdiscovery/utils/slice"
)

// defaultResolvers are used for name server discovery when the user
// does not supply any.
var defaultResolvers = []string{
	"1.1.1.1:53",
	"1.0.0.1:53",
	"8.8.8.8:53",
	"8.8.4.4:53",
}

const transferTimeout = 15 * time.Second

// TransferClient discovers the name servers of a domain and performs
// AXFR queries against them without shelling out.
type TransferClient struct {
	resolver *retryabledns.Client
}

// withDefaultPort appends the default DNS port to servers specified
// without one.
func withDefaultPort(servers []string) []string {
	normalized := make([]string, 0, len(servers))
	for _, server := range servers {
		if _, _, err := net.SplitHostPort(server); err != nil {
			server = net.JoinHostPort(server, "53")
		}
		normalized = append(normalized, server)
	}
	return normalized
}

// NewTransferClient creates a transfer client using the given
// recursive resolvers for discovery lookups.
func NewTransferClient(resolvers []string, retries int) (*TransferClient, error) {
	if len(resolvers) == 0 {
		resolvers = defaultResolvers
	} else {
		resolvers = withDefaultPort(resolvers)
	}
	if retries <= 0 {
		retries = 1
	}
	resolver, err := retryabledns.New(resolvers, retries)
	if err != nil {
		return nil, fmt.Errorf("could not create resolver: %w", err)
	}
	return &TransferClient{resolver: resolver}, nil
}

// NameServers returns the addresses of the authoritative name servers
// for domain. Name server names that don't resolve are skipped.
func (t *TransferClient) NameServers(domain string) ([]string, error) {
	data, err := t.resolver.Query(domain, dns.TypeNS)
	if err != nil {
		return nil, fmt.Errorf("NS lookup for %s failed: %w", domain, err)
	}

	var servers []string
	for _, ns := range data.NS {
		ns = strings.TrimSuffix(ns, ".")
		resolved, err := t.resolver.Resolve(ns)
		if err != nil {
			gologger.Debug().Msgf("Could not resolve name server %s: %s\n", ns, err)
			continue
		}
		servers = append(servers, resolved.A...)
		servers = append(servers, resolved.AAAA...)
	}
	return sliceutil.Dedupe(servers), nil
}

// Transfer performs an AXFR query for domain against server and
// returns the zone rendered as line-oriented text in presentation
// format, one resource record per line. The context bounds the whole
// transfer.
func (t *TransferClient) Transfer(ctx context.Context, domain, server string, port int) (io.Reader, error) {
	if port <= 0 {
		port = 53
	}
	address := server
	if _, _, err := net.SplitHostPort(server); err != nil {
		address = net.JoinHostPort(server, strconv.Itoa(port))
	}

	message := new(dns.Msg)
	message.SetAxfr(dns.Fqdn(domain))

	timeout := transferTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	transfer := &dns.Transfer{
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}

	envelopes, err := transfer.In(message, address)
	if err != nil {
		return nil, fmt.Errorf("transfer of %s from %s failed: %w", domain, address, err)
	}

	var builder strings.Builder
	for envelope := range envelopes {
		if envelope.Error != nil {
			return nil, fmt.Errorf("transfer of %s from %s failed: %w", domain, address, envelope.Error)
		}
		for _, rr := range envelope.RR {
			builder.WriteString(rr.String())
			builder.WriteString("\n")
		}
	}
	return strings.NewReader(builder.String()), nil
}
