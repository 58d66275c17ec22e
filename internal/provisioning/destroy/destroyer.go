package destroy

import (
	"context"
	"fmt"

	"github.com/imamik/dodriver/internal/platform/digitalocean"
	"github.com/imamik/dodriver/internal/provisioning"
	"github.com/imamik/dodriver/internal/util/naming"
)

const phase = "destroy"

// Destroyer handles machine destruction.
type Destroyer struct {
	defaultStrategy provisioning.ConvergenceStrategy
}

// NewDestroyer creates a destroyer. strategy is used for machines whose
// options name none; nil means there is nothing to clean up.
func NewDestroyer(strategy provisioning.ConvergenceStrategy) *Destroyer {
	if strategy == nil {
		strategy = provisioning.NoopConvergence{}
	}
	return &Destroyer{defaultStrategy: strategy}
}

// Destroy removes the machine's droplet if it still runs, clears the
// recorded location and cleans up convergence state.
func (d *Destroyer) Destroy(ctx *provisioning.Context, spec *provisioning.MachineSpec, opts provisioning.MachineOptions) error {
	if id := spec.ServerID(); id != "" {
		if err := d.destroyServer(ctx, spec, id); err != nil {
			return err
		}
	}

	spec.Location = nil

	strategy := opts.Convergence
	if strategy == nil {
		strategy = d.defaultStrategy
	}
	if err := strategy.CleanupConvergence(ctx, ctx.Actions, spec); err != nil {
		return fmt.Errorf("failed to clean up convergence for %s: %w", spec.Name, err)
	}
	return nil
}

func (d *Destroyer) destroyServer(ctx *provisioning.Context, spec *provisioning.MachineSpec, id string) error {
	server, err := ctx.Infra.GetServer(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get droplet %s: %w", id, err)
	}

	if server == nil || server.State == digitalocean.StateArchive {
		ctx.Observer.Printf("[%s] droplet %s of %s is already gone", phase, id, spec.Name)
		ctx.Metrics.MachineDestroyed(false)
		return nil
	}

	err = ctx.Actions.PerformAction(ctx, naming.DestroyMachine(spec.Name, id, ctx.DriverURL), func(c context.Context) error {
		provisioning.LogResourceDeleting(ctx.Observer, phase, "droplet", spec.Name)
		if err := ctx.Infra.DestroyServer(c, id); err != nil {
			return err
		}
		provisioning.LogResourceDeleted(ctx.Observer, phase, "droplet", spec.Name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to destroy machine %s: %w", spec.Name, err)
	}
	ctx.Metrics.MachineDestroyed(true)
	return nil
}
