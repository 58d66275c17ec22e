package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/dodriver/cmd/dodriver/handlers"
)

// List returns the list command.
func List(opts *handlers.Options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List machines recorded in the state file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.List(cmd.Context(), opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: yaml or json (default: table)")

	return cmd
}
