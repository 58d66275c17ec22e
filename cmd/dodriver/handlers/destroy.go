package handlers

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// confirmDestroy asks before a machine is destroyed. The prompt renders on
// stderr so stdout only carries the command output. Replaced in tests.
var confirmDestroy = func(ctx context.Context, machine, serverID string) (bool, error) {
	confirmed := false
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Destroy machine %s?", machine)).
				Description(fmt.Sprintf("Droplet %s will be deleted. This cannot be undone.", serverID)).
				Affirmative("Destroy").
				Negative("Cancel").
				Value(&confirmed),
		),
	).WithProgramOptions(tea.WithOutput(stderr)).RunWithContext(ctx)
	if err != nil {
		return false, err
	}
	return confirmed, nil
}

// Destroy removes machine's droplet and forgets the machine.
// On a terminal the user confirms first unless yes is set.
func Destroy(ctx context.Context, opts *Options, machine string, yes bool) (err error) {
	s, err := openSession(ctx, opts, true)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.Close(ctx)) }()

	spec, err := s.driver.Machine(ctx, machine)
	if err != nil {
		return err
	}

	if id := spec.ServerID(); id != "" && !yes && !opts.DryRun && isInteractive() {
		ok, err := confirmDestroy(ctx, machine, id)
		if err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			fmt.Fprintln(stdout, "aborted")
			return nil
		}
	}

	writeTitle(stdout, fmt.Sprintf("Destroying %s on %s", machine, s.driver.URL()))
	if err := s.driver.DestroyMachine(ctx, spec); err != nil {
		writeActions(stdout, s.driver.Actions())
		return fmt.Errorf("destroy failed: %w", err)
	}
	writeActions(stdout, s.driver.Actions())
	return nil
}
