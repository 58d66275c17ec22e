package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/dodriver/cmd/dodriver/handlers"
)

// Allocate returns the allocate command.
func Allocate(opts *handlers.Options) *cobra.Command {
	var overrides []string

	cmd := &cobra.Command{
		Use:   "allocate MACHINE",
		Short: "Create a droplet for a machine unless it already has one",
		Long: `Allocate creates a droplet for MACHINE and records it in the state file.

A machine whose recorded droplet still exists is left alone. A droplet that
was deleted or archived outside dodriver is replaced.

Examples:
  dodriver allocate web-1
  dodriver allocate web-1 --set backups_enabled=true --set key_path=~/.ssh/deploy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Allocate(cmd.Context(), opts, args[0], overrides)
		},
	}

	cmd.Flags().StringArrayVar(&overrides, "set", nil, "Bootstrap option override, key=value (repeatable)")

	return cmd
}
