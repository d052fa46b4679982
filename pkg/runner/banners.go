package runner

import (
	"github.com/projectdiscovery/gologger"
)

const banner = `
                        __                          __
 ____  ____  ____  ___ / /  ___  __ _____  ___ ____/ /
/_  / / __ \/ __ \/ -_) _ \/ _ \/ // / _ \/ _ '/ _  /
 /__/ \___/_/ /_/\__/_//_/\___/\_,_/_//_/\_,_/\_,_/
`

// version is the current version of zonehound
const version = `v0.2.1`

// showBanner is used to show the banner to the user
func showBanner() {
	gologger.Print().Msgf("%s\n", banner)
}
