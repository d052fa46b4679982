package runner

import (
	"errors"
	"fmt"

	fileutil "github.com/projectdiscovery/utils/file"
)

// validateOptions validates the configuration options passed
func (options *Options) validateOptions() error {
	// Both verbose and silent flags were used
	if options.Verbose && options.Silent {
		return errors.New("both verbose and silent mode specified")
	}

	// Check that at least one source of in-scope domains exists
	if len(options.Domains) == 0 && options.DomainsFile == "" && !options.Stdin {
		return errors.New("no in-scope domain was provided")
	}

	if options.DomainsFile != "" && !fileutil.FileExists(options.DomainsFile) {
		return fmt.Errorf("domain list file %s does not exist", options.DomainsFile)
	}

	if options.IPVersion != 0 && options.IPVersion != 4 && options.IPVersion != 6 {
		return fmt.Errorf("invalid ip version %d specified", options.IPVersion)
	}

	if options.Port < 0 || options.Port > 65535 {
		return fmt.Errorf("invalid port %d specified", options.Port)
	}

	if options.HostPath != "" && options.Native {
		return errors.New("both host binary path and native mode specified")
	}

	return nil
}
