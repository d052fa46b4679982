package runner

import (
	"os"

	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
	fileutil "github.com/projectdiscovery/utils/file"
)

// Options contains the configuration options for tuning the zone
// transfer enumeration process.
type Options struct {
	Domains          goflags.StringSlice // Domains are the in-scope domains to test for zone transfers
	DomainsFile      string              // DomainsFile is a file containing in-scope domains, one per line
	HostPath         string              // HostPath contains the path to the host binary
	Native           bool                // Native forces the built-in transfer client instead of the host binary
	Servers          goflags.StringSlice // Servers are explicit DNS servers to request transfers from
	Port             int                 // Port is an alternate DNS port for transfers
	IPVersion        int                 // IPVersion forces IPv4 or IPv6 transport for the host binary
	Retries          int                 // Retries is the number of retries for recursive lookups
	Threads          int                 // Threads controls the number of domains transferred in parallel
	StoreDir         string              // StoreDir persists the graph to a LevelDB database at this path
	TrustedResolvers goflags.StringSlice // TrustedResolvers verify discovered names before reporting
	Output           string              // Output is the file to write discovered host names to
	Json             bool                // Json is the format for making output as ndjson
	Silent           bool                // Silent suppresses any extra text and only writes host names to screen
	Verbose          bool                // Verbose flag indicates whether to show verbose output or not
	NoColor          bool                // NoColor disables the colored output
	Version          bool                // Version specifies if we should just show version and exit

	Stdin bool // Stdin specifies whether stdin input was given to the process
}

// ParseOptions parses the command line flags provided by a user
func ParseOptions() *Options {
	options := &Options{}

	flagSet := goflags.NewFlagSet()
	flagSet.SetDescription(`zonehound tests in-scope domains for DNS zone transfers and builds a graph of the host names, addresses and aliases found in the transferred zones.`)

	flagSet.CreateGroup("input", "Input",
		flagSet.StringSliceVarP(&options.Domains, "domain", "d", nil, "in-scope domains to test for zone transfers (comma separated)", goflags.NormalizedStringSliceOptions),
		flagSet.StringVarP(&options.DomainsFile, "list", "l", "", "file containing in-scope domains to test"),
	)

	flagSet.CreateGroup("config", "Configuration",
		flagSet.StringVar(&options.HostPath, "host-bin", "", "path to the host binary"),
		flagSet.BoolVar(&options.Native, "native", false, "use the built-in transfer client instead of the host binary"),
		flagSet.StringSliceVarP(&options.Servers, "server", "s", nil, "DNS servers to request transfers from instead of the discovered name servers", goflags.NormalizedStringSliceOptions),
		flagSet.IntVarP(&options.Port, "port", "p", 0, "alternate DNS port to use for transfers"),
		flagSet.IntVar(&options.IPVersion, "ip-version", 0, "force IPv4 (4) or IPv6 (6) transport for the host binary"),
		flagSet.IntVar(&options.Retries, "retries", 3, "number of retries for recursive dns lookups"),
		flagSet.IntVarP(&options.Threads, "threads", "t", 10, "number of domains to process in parallel"),
		flagSet.StringVar(&options.StoreDir, "store", "", "directory to persist the result graph to (default in-memory)"),
		flagSet.StringSliceVarP(&options.TrustedResolvers, "trusted-resolvers", "tr", nil, "resolvers to verify discovered host names with before reporting", goflags.NormalizedStringSliceOptions),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.StringVarP(&options.Output, "output", "o", "", "file to write discovered host names to (optional)"),
		flagSet.BoolVarP(&options.Json, "json", "j", false, "make output format as ndjson"),
		flagSet.BoolVar(&options.Silent, "silent", false, "show only host names in output"),
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", false, "show verbose output"),
		flagSet.BoolVarP(&options.NoColor, "no-color", "nc", false, "don't use colors in output"),
		flagSet.BoolVar(&options.Version, "version", false, "show version of zonehound"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("Could not parse flags: %s\n", err)
	}

	// Check if stdin pipe was given
	options.Stdin = fileutil.HasStdin()

	// Read the inputs and configure the logging
	options.configureOutput()

	// Show the user the banner
	showBanner()

	if options.Version {
		gologger.Info().Msgf("Current Version: %s\n", version)
		os.Exit(0)
	}

	// Validate the options passed by the user and if any
	// invalid options have been used, exit.
	if err := options.validateOptions(); err != nil {
		gologger.Fatal().Msgf("Program exiting: %s\n", err)
	}

	return options
}

// configureOutput configures the output on the screen
func (options *Options) configureOutput() {
	// If the user desires verbose output, show verbose output
	if options.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelDebug)
	}
	if options.NoColor {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(true))
	}
	if options.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	}
}
