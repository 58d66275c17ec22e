package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/dodriver/cmd/dodriver/handlers"
)

// Destroy returns the destroy command.
func Destroy(opts *handlers.Options) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "destroy MACHINE",
		Short: "Destroy a machine's droplet",
		Long: `Destroy deletes the droplet recorded for MACHINE and forgets the machine.

Destroying a machine whose droplet is already gone succeeds.

WARNING: This operation is irreversible.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Destroy(cmd.Context(), opts, args[0], yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}
