// Package axfr attempts DNS zone transfers for in-scope domains and
// merges the captured output into a host/domain relationship graph.
// Transfers either shell out to the `host` binary or speak AXFR
// natively; both paths produce the same line-oriented zone text and
// feed the same processor.
package axfr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/remeh/sizedwaitgroup"
	"github.com/rs/xid"

	"github.com/zonehound/zonehound/internal/history"
	"github.com/zonehound/zonehound/pkg/graph"
	"github.com/zonehound/zonehound/pkg/scope"
)

// Options contains configuration options for the zone transfer client.
type Options struct {
	// HostPath is the path to the `host` binary. Empty enables the
	// built-in transfer client instead.
	HostPath string
	// Servers are explicit DNS servers to request transfers from. When
	// empty the name servers of each domain are discovered first.
	Servers []string
	// Port is an alternate DNS port, 0 for the default.
	Port int
	// IPVersion forces IPv4 (4) or IPv6 (6) transport for the host
	// binary, 0 for no preference.
	IPVersion int
	// Retries is the number of retries for recursive lookups during
	// name server discovery and verification.
	Retries int
	// Threads is the number of domains transferred concurrently.
	Threads int
	// TempDir is a temporary directory for captured command output.
	TempDir string
	// OutputFile is the file to write discovered host names to.
	OutputFile string
	// Json makes the output format ndjson.
	Json bool
	// TrustedResolvers enables verification of discovered host names
	// at output time.
	TrustedResolvers []string
	// OnResult is called for every reported host name.
	OnResult func(hostname string)
}

// Client runs zone transfers for the in-scope domains and merges the
// results into the graph store.
type Client struct {
	options   Options
	scope     *scope.Scope
	store     graph.Store
	history   *history.Log
	processor *Processor
	transfer  *TransferClient
}

// New creates a new zone transfer client for the given scope and
// graph store.
func New(options Options, sc *scope.Scope, store graph.Store) (*Client, error) {
	transfer, err := NewTransferClient(nil, options.Retries)
	if err != nil {
		return nil, fmt.Errorf("could not create transfer client: %w", err)
	}
	if options.Threads <= 0 {
		options.Threads = 1
	}
	return &Client{
		options:   options,
		scope:     sc,
		store:     store,
		history:   history.NewLog(),
		processor: NewProcessor(store, sc),
		transfer:  transfer,
	}, nil
}

// Run attempts zone transfers for every in-scope domain. Refused or
// failed transfers are logged and skipped; store and I/O failures
// abort the domain and fail the run with the first such error.
func (c *Client) Run(ctx context.Context) error {
	swg := sizedwaitgroup.New(c.options.Threads)

	var mutex sync.Mutex
	var firstErr error
	for _, domain := range c.scope.Domains() {
		swg.Add()
		go func(domain string) {
			defer swg.Done()
			if err := c.enumerateDomain(ctx, domain); err != nil {
				mutex.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mutex.Unlock()
			}
		}(domain)
	}
	swg.Wait()
	return firstErr
}

// enumerateDomain tries a transfer of domain from each candidate
// server, one server at a time. A returned error means merging into
// the store failed and the remaining servers were not tried.
func (c *Client) enumerateDomain(ctx context.Context, domain string) error {
	servers := c.options.Servers
	if len(servers) == 0 {
		discovered, err := c.transfer.NameServers(domain)
		if err != nil {
			gologger.Warning().Msgf("Could not discover name servers for %s: %s\n", domain, err)
			return nil
		}
		servers = discovered
	}
	if len(servers) == 0 {
		gologger.Warning().Msgf("No name servers found for %s\n", domain)
		return nil
	}

	for _, server := range servers {
		var err error
		if c.options.HostPath != "" {
			err = c.runHostCommand(ctx, domain, server)
		} else {
			err = c.runNativeTransfer(ctx, domain, server)
		}
		if err != nil {
			return fmt.Errorf("could not merge results for %s from %s: %w", domain, server, err)
		}
	}
	return nil
}

// commandArgs builds the `host` argument vector for a transfer of
// domain from server.
func (c *Client) commandArgs(domain, server string) []string {
	args := []string{c.options.HostPath}
	switch c.options.IPVersion {
	case 4:
		args = append(args, "-4")
	case 6:
		args = append(args, "-6")
	}
	args = append(args, "-t", "axfr")
	if c.options.Port > 0 {
		args = append(args, "-p", strconv.Itoa(c.options.Port))
	}
	args = append(args, domain)
	if server != "" {
		args = append(args, server)
	}
	return args
}

// runHostCommand executes the external host binary with its stdout
// captured to a temporary file and processes the result. Identical
// commands are executed only once per run.
func (c *Client) runHostCommand(ctx context.Context, domain, server string) error {
	args := c.commandArgs(domain, server)
	execution, created := c.history.GetOrCreate(args)
	if !created {
		gologger.Debug().Msgf("Skipping already executed command: %v\n", args)
		return nil
	}

	stdoutFile, err := os.CreateTemp(c.options.TempDir, "zonehound-stdout-"+xid.New().String()+"-")
	if err != nil {
		return fmt.Errorf("could not create temp file for host output: %w", err)
	}
	defer func() {
		_ = stdoutFile.Close()
		_ = os.Remove(stdoutFile.Name())
	}()

	gologger.Debug().Msgf("Executing %v\n", args)

	start := time.Now()
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = stdoutFile
	cmd.Stderr = nil
	if err := cmd.Run(); err != nil {
		// host exits non-zero when the transfer is refused, which is
		// the common case. The captured output is still processed.
		gologger.Debug().Msgf("host command for %s exited with error: %s\n", domain, err)
	}
	gologger.Debug().Msgf("Transfer attempt for %s from %s took %s\n", domain, server, time.Since(start))

	output, err := os.Open(stdoutFile.Name())
	if err != nil {
		return fmt.Errorf("could not reopen host output: %w", err)
	}
	defer func() {
		_ = output.Close()
	}()

	return c.processor.Process(execution, output)
}

// runNativeTransfer performs the transfer with the built-in AXFR
// client and feeds the rendered records through the same processor.
// Refused transfers are the common case and are logged, not returned.
func (c *Client) runNativeTransfer(ctx context.Context, domain, server string) error {
	execution, created := c.history.GetOrCreate([]string{"axfr", domain, server})
	if !created {
		gologger.Debug().Msgf("Skipping already attempted transfer of %s from %s\n", domain, server)
		return nil
	}

	reader, err := c.transfer.Transfer(ctx, domain, server, c.options.Port)
	if err != nil {
		gologger.Warning().Msgf("Zone transfer of %s from %s failed: %s\n", domain, server, err)
		return nil
	}
	return c.processor.Process(execution, reader)
}
