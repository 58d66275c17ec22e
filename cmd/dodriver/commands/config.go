package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/dodriver/cmd/dodriver/handlers"
)

// Config returns the config command, which prints the merged configuration.
func Config(opts *handlers.Options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the merged driver configuration",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.ShowConfig(opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", handlers.OutputYAML, "Output format: yaml or json")

	return cmd
}
