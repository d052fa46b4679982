package main

import (
	"github.com/projectdiscovery/gologger"

	"github.com/zonehound/zonehound/pkg/runner"
)

func main() {
	// Parse the command line flags and read config files
	options := runner.ParseOptions()

	zoneRunner, err := runner.New(options)
	if err != nil {
		gologger.Fatal().Msgf("Could not create runner: %s\n", err)
	}

	zoneRunner.RunEnumeration()
	zoneRunner.Close()
}
