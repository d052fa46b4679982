package runner

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/projectdiscovery/gologger"
	fileutil "github.com/projectdiscovery/utils/file"

	"github.com/zonehound/zonehound/pkg/axfr"
	"github.com/zonehound/zonehound/pkg/graph"
	"github.com/zonehound/zonehound/pkg/scope"
	"github.com/zonehound/zonehound/pkg/store"
)

// Runner is a client for running the enumeration process.
type Runner struct {
	options *Options
	tempDir string
	scope   *scope.Scope
	store   graph.Store
	client  *axfr.Client
}

// New creates a new client for running the enumeration process.
func New(options *Options) (*Runner, error) {
	runner := &Runner{
		options: options,
	}

	domains, err := runner.gatherDomains()
	if err != nil {
		return nil, err
	}
	sc, err := scope.New(domains)
	if err != nil {
		return nil, err
	}
	runner.scope = sc

	// Setup the host binary path if none was given. If no valid path
	// is found, fall back to the built-in transfer client.
	if !options.Native && options.HostPath == "" {
		options.HostPath = runner.findBinary()
		if options.HostPath == "" {
			gologger.Info().Msgf("Could not find host binary, using built-in transfer client\n")
		} else {
			gologger.Debug().Msgf("Discovered host binary at %s\n", options.HostPath)
		}
	}
	if options.Native {
		options.HostPath = ""
	}

	// Create a temporary directory that will be removed at the end of
	// the enumeration process.
	dir, err := os.MkdirTemp("", "zonehound-*")
	if err != nil {
		return nil, err
	}
	runner.tempDir = dir

	// The graph lives in memory unless the user asked for a
	// persistent store.
	if options.StoreDir != "" {
		persistent, err := store.Open(options.StoreDir, sc)
		if err != nil {
			runner.Close()
			return nil, fmt.Errorf("could not open graph store: %w", err)
		}
		runner.store = persistent
	} else {
		runner.store = graph.NewMemory(sc)
	}

	client, err := axfr.New(axfr.Options{
		HostPath:         options.HostPath,
		Servers:          []string(options.Servers),
		Port:             options.Port,
		IPVersion:        options.IPVersion,
		Retries:          options.Retries,
		Threads:          options.Threads,
		TempDir:          runner.tempDir,
		OutputFile:       options.Output,
		Json:             options.Json,
		TrustedResolvers: []string(options.TrustedResolvers),
	}, sc, runner.store)
	if err != nil {
		runner.Close()
		return nil, fmt.Errorf("could not create transfer client: %w", err)
	}
	runner.client = client

	return runner, nil
}

// Close releases all the resources and cleans up
func (r *Runner) Close() {
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			gologger.Error().Msgf("Could not close graph store: %s\n", err)
		}
	}
	_ = os.RemoveAll(r.tempDir)
}

// RunEnumeration attempts zone transfers for all in-scope domains and
// reports the discovered host names.
func (r *Runner) RunEnumeration() {
	gologger.Info().Msgf("Testing %d domains for zone transfers\n", len(r.scope.Domains()))

	if err := r.client.Run(context.Background()); err != nil {
		gologger.Error().Msgf("Could not run zone transfers: %s\n", err)
		return
	}

	if err := r.client.WriteOutput(); err != nil {
		gologger.Error().Msgf("Could not write output: %s\n", err)
	}
}

// gatherDomains collects the in-scope domains from flags, the domain
// list file and stdin.
func (r *Runner) gatherDomains() ([]string, error) {
	domains := []string(r.options.Domains)

	if r.options.DomainsFile != "" {
		file, err := os.Open(r.options.DomainsFile)
		if err != nil {
			return nil, fmt.Errorf("could not read domain list: %w", err)
		}
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			// RFC4343 - case insensitive domain
			text := strings.ToLower(strings.TrimSpace(scanner.Text()))
			if text == "" {
				continue
			}
			domains = append(domains, text)
		}
		_ = file.Close()
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("could not read domain list: %w", err)
		}
	}

	if r.options.Stdin && fileutil.HasStdin() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			text := strings.ToLower(strings.TrimSpace(scanner.Text()))
			if text == "" {
				continue
			}
			domains = append(domains, text)
		}
	}

	return domains, nil
}

// findBinary searches for the host binary in various pre-defined
// paths, only linux and macos paths are supported rn
func (r *Runner) findBinary() string {
	otherCommonLocations := []string{
		"/usr/bin/host",
		"/usr/local/bin/host",
		"/data/data/com.termux/files/usr/bin/host",
	}

	for _, file := range otherCommonLocations {
		if fileutil.FileExists(file) {
			return file
		}
	}

	file, err := exec.LookPath("host")
	if err != nil {
		return ""
	}

	return file
}
