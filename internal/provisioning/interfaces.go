package provisioning

import "context"

// ActionHandler performs remote mutations on behalf of an operation.
// Components never mutate provider state except through PerformAction.
type ActionHandler interface {
	// PerformAction records description and runs fn. In dry-run mode fn is
	// recorded but not executed.
	PerformAction(ctx context.Context, description string, fn func(context.Context) error) error
}

// ConvergenceStrategy owns whatever bookkeeping a machine needs beyond its
// server, and removes it once the machine is destroyed.
type ConvergenceStrategy interface {
	CleanupConvergence(ctx context.Context, actions ActionHandler, spec *MachineSpec) error
}

// NoopConvergence has no bookkeeping to clean up.
type NoopConvergence struct{}

// CleanupConvergence implements ConvergenceStrategy.
func (NoopConvergence) CleanupConvergence(context.Context, ActionHandler, *MachineSpec) error {
	return nil
}

// MetricsRecorder receives operational counters. Implemented by internal/metrics.
type MetricsRecorder interface {
	CatalogLookup(catalog string, matched bool)
	ActionPerformed(outcome Outcome)
	MachineDestroyed(remote bool)
}

// NopMetrics discards all measurements.
type NopMetrics struct{}

func (NopMetrics) CatalogLookup(string, bool) {}
func (NopMetrics) ActionPerformed(Outcome)    {}
func (NopMetrics) MachineDestroyed(bool)      {}
