package provisioning

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/imamik/dodriver/internal/config"
	"github.com/imamik/dodriver/internal/platform/digitalocean"
)

// Context wraps all dependencies needed by a lifecycle operation.
type Context struct {
	context.Context
	Config   *config.ResolvedConfig
	Infra    digitalocean.InfrastructureManager
	Actions  ActionHandler
	Observer Observer
	Metrics  MetricsRecorder

	// DriverURL identifies the driver in errors, descriptions and locations.
	DriverURL     string
	DriverVersion string
}

// NewContext creates a provisioning context with a discarding observer, no
// metrics and a recording action handler that executes every action.
func NewContext(
	ctx context.Context,
	cfg *config.ResolvedConfig,
	infra digitalocean.InfrastructureManager,
	driverURL string,
) *Context {
	observer := NewLogObserver(logr.Discard())
	metrics := NopMetrics{}
	return &Context{
		Context:   ctx,
		Config:    cfg,
		Infra:     infra,
		Actions:   NewRecordingActionHandler(observer, metrics, false),
		Observer:  observer,
		Metrics:   metrics,
		DriverURL: driverURL,
	}
}

// WithContext returns a shallow copy bound to ctx.
func (c *Context) WithContext(ctx context.Context) *Context {
	out := *c
	out.Context = ctx
	return &out
}
