package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/dodriver/cmd/dodriver/handlers"
)

// Resolve returns the resolve command.
//
// The command prints the bootstrap options a machine would be created with,
// after image, flavor, region and SSH key lookups.
func Resolve(opts *handlers.Options) *cobra.Command {
	var (
		overrides []string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "resolve MACHINE",
		Short: "Resolve bootstrap options for a machine",
		Long: `Resolve looks up image, flavor, region and SSH keys and prints the
concrete options a droplet for MACHINE would be created with.

A missing SSH key is generated and uploaded; use --dry-run to prevent that.

Examples:
  dodriver resolve web-1
  dodriver resolve web-1 --set flavor_name=1GB --set region_name="New York 1"
  dodriver resolve web-1 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Resolve(cmd.Context(), opts, args[0], overrides, output)
		},
	}

	cmd.Flags().StringArrayVar(&overrides, "set", nil, "Bootstrap option override, key=value (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", handlers.OutputYAML, "Output format: yaml or json")

	return cmd
}
