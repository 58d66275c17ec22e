package handlers

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
)

// List prints the machines recorded in the state file.
func List(ctx context.Context, opts *Options, output string) (err error) {
	path := opts.StatePath
	if path == "" {
		path = DefaultStatePath()
	}
	st, err := openStore(ctx, path)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, st.Close()) }()

	machines, err := st.ListMachines(ctx)
	if err != nil {
		return err
	}

	if output != "" {
		return writeDocument(stdout, machines, output)
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDROPLET\tDRIVER\tALLOCATED")
	for _, m := range machines {
		droplet, url, allocated := "-", "-", "-"
		if m.Location != nil {
			droplet = m.Location.ServerID
			url = m.Location.DriverURL
			if !m.Location.AllocatedAt.IsZero() {
				allocated = m.Location.AllocatedAt.Format("2006-01-02 15:04")
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Name, droplet, url, allocated)
	}
	return tw.Flush()
}
