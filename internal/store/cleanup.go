package store

import (
	"context"
	"fmt"

	"github.com/imamik/dodriver/internal/provisioning"
)

// Cleanup is a convergence strategy whose bookkeeping is the machine's
// bootstrap record.
type Cleanup struct {
	Store *Store
}

// CleanupConvergence deletes the bootstrap record through the action handler.
func (c Cleanup) CleanupConvergence(ctx context.Context, actions provisioning.ActionHandler, spec *provisioning.MachineSpec) error {
	return actions.PerformAction(ctx, fmt.Sprintf("delete bootstrap record of %s", spec.Name), func(ctx context.Context) error {
		return c.Store.DeleteBootstrap(ctx, spec.Name)
	})
}

var _ provisioning.ConvergenceStrategy = Cleanup{}
