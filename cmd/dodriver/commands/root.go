// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/dodriver/cmd/dodriver/handlers"
	"github.com/imamik/dodriver/internal/config"
	"github.com/imamik/dodriver/internal/util/naming"
)

// Root returns the root command for the dodriver CLI.
//
// Global flags are bound to one handlers.Options value shared by all
// subcommands.
func Root() *cobra.Command {
	opts := &handlers.Options{}

	cmd := &cobra.Command{
		Use:   "dodriver",
		Short: "Provision machines on DigitalOcean",
		Long: `dodriver resolves machine bootstrap options against your DigitalOcean
account and allocates or destroys droplets for named machines.

Configuration is merged from three layers, first defined value wins:
  1. the file given with --config
  2. the legacy tugboat credential file (~/.tugboat)
  3. built-in defaults (CentOS 6.5 x64, 512MB, San Francisco 1)

The API token is read from digitalocean_token, the legacy api key,
or the DIGITALOCEAN_TOKEN environment variable.`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			opts.Version = version
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to a YAML file with driver_options and machine_options")
	flags.StringVar(&opts.DriverURL, "driver-url", naming.DriverScheme, "Driver URL, digitalocean:<client id>")
	flags.StringVar(&opts.LegacyPath, "legacy-file", config.DefaultLegacyPath(), "Legacy tugboat credential file (empty to disable)")
	flags.StringVar(&opts.StatePath, "state", handlers.DefaultStatePath(), "SQLite file remembering allocated machines")
	flags.BoolVar(&opts.DryRun, "dry-run", false, "Record provider mutations without executing them")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "Verbose logging")
	flags.StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")
	flags.BoolVar(&opts.Trace, "trace", false, "Print OpenTelemetry spans to stderr")

	cmd.AddCommand(Resolve(opts))
	cmd.AddCommand(Allocate(opts))
	cmd.AddCommand(Destroy(opts))
	cmd.AddCommand(List(opts))
	cmd.AddCommand(Config(opts))
	cmd.AddCommand(Version())

	return cmd
}
