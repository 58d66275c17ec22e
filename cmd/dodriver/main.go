// Package main is the entry point for the dodriver CLI.
//
// dodriver drives DigitalOcean droplets the way the provisioning framework
// does: it resolves bootstrap options against the account's catalogs,
// allocates droplets, and destroys them again. Machines are remembered in a
// local SQLite state file between invocations.
//
// Commands: resolve, allocate, destroy, list, config, version.
//
// For detailed usage information, run:
//
//	dodriver --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/dodriver/cmd/dodriver/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
