package handlers

import (
	"context"
	"errors"
	"fmt"
)

// Allocate makes sure machine has a live droplet.
func Allocate(ctx context.Context, opts *Options, machine string, overrides []string) (err error) {
	values, err := parseOverrides(overrides)
	if err != nil {
		return err
	}

	s, err := openSession(ctx, opts, true)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.Close(ctx)) }()

	spec, err := s.driver.Machine(ctx, machine)
	if err != nil {
		return err
	}

	writeTitle(stdout, fmt.Sprintf("Allocating %s on %s", machine, s.driver.URL()))
	if err := s.driver.AllocateMachine(ctx, spec, values); err != nil {
		writeActions(stdout, s.driver.Actions())
		return fmt.Errorf("allocate failed: %w", err)
	}
	writeActions(stdout, s.driver.Actions())

	if id := spec.ServerID(); id != "" {
		fmt.Fprintf(stdout, "machine %s is droplet %s\n", machine, id)
	}
	return nil
}
