package handlers

import (
	"context"
	"errors"
)

// Resolve prints the bootstrap options machine would be created with.
// Missing SSH keys are uploaded unless the session is a dry run.
func Resolve(ctx context.Context, opts *Options, machine string, overrides []string, output string) (err error) {
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
	resolved, err := s.driver.BootstrapOptionsFor(ctx, spec, values)
	if err != nil {
		return err
	}
	return writeDocument(stdout, resolved, output)
}
