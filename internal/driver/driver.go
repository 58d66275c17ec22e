package driver

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/imamik/dodriver/internal/config"
	"github.com/imamik/dodriver/internal/platform/digitalocean"
	"github.com/imamik/dodriver/internal/provisioning"
	"github.com/imamik/dodriver/internal/provisioning/compute"
	"github.com/imamik/dodriver/internal/provisioning/destroy"
	"github.com/imamik/dodriver/internal/provisioning/keys"
	"github.com/imamik/dodriver/internal/store"
	"github.com/imamik/dodriver/internal/util/naming"
)

// TokenEnvVar is consulted when the configuration carries no API token.
const TokenEnvVar = "DIGITALOCEAN_TOKEN"

const tracerName = "github.com/imamik/dodriver/internal/driver"

// ErrMissingToken is returned when no API token can be found.
var ErrMissingToken = errors.New("no DigitalOcean API token configured")

// Options configures a driver. The zero value is usable.
type Options struct {
	// Explicit is the user's configuration layer.
	Explicit config.Layer
	// LegacyPath is the tugboat credential file. Empty disables the import.
	LegacyPath string

	// Infra replaces the DigitalOcean API client.
	Infra digitalocean.InfrastructureManager

	Logger         logr.Logger
	Metrics        provisioning.MetricsRecorder
	TracerProvider trace.TracerProvider

	// DryRun records remote mutations without executing them.
	DryRun bool
	// Store persists machines and their bootstrap options. Optional.
	Store *store.Store
	// Version is recorded in machine locations and the API user agent.
	Version string
}

// Driver is a DigitalOcean machine driver bound to one credential.
type Driver struct {
	url      string
	version  string
	cfg      *config.ResolvedConfig
	infra    digitalocean.InfrastructureManager
	observer provisioning.Observer
	metrics  provisioning.MetricsRecorder
	actions  *provisioning.RecordingActionHandler
	store    *store.Store
	tracer   trace.Tracer

	defaultKey  *keys.DefaultKeyProvider
	resolver    *compute.Resolver
	provisioner *compute.Provisioner
	destroyer   *destroy.Destroyer
}

// RegisterDigitalOcean registers the DigitalOcean driver factory.
func RegisterDigitalOcean(reg *Registry) error {
	return reg.Register(naming.DriverScheme, New)
}

// New builds a DigitalOcean driver. The configuration is resolved once, here.
func New(_ context.Context, credentialID string, opts Options) (*Driver, error) {
	cfg, err := config.Resolve(credentialID, opts.Explicit, opts.LegacyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve driver configuration: %w", err)
	}
	typed := cfg.Config()

	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Logger.GetSink() == nil {
		opts.Logger = logr.Discard()
	}
	if opts.Metrics == nil {
		opts.Metrics = provisioning.NopMetrics{}
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}

	infra := opts.Infra
	if infra == nil {
		infra, err = newAPIClient(typed.DriverOptions.ComputeOptions, opts.Version)
		if err != nil {
			return nil, err
		}
	}

	observer := provisioning.NewLogObserver(opts.Logger.WithValues("driver", naming.DriverURL(cfg.CredentialID())))

	d := &Driver{
		url:        naming.DriverURL(cfg.CredentialID()),
		version:    opts.Version,
		cfg:        cfg,
		infra:      infra,
		observer:   observer,
		metrics:    opts.Metrics,
		actions:    provisioning.NewRecordingActionHandler(observer, opts.Metrics, opts.DryRun),
		store:      opts.Store,
		tracer:     opts.TracerProvider.Tracer(tracerName),
		defaultKey: keys.NewDefaultKeyProvider(typed.DriverOptions.KeysDir),
	}

	d.resolver = compute.NewResolver(&keys.Reconciler{}, d.defaultKey)
	d.provisioner = compute.NewProvisioner(d.resolver)

	var strategy provisioning.ConvergenceStrategy = provisioning.NoopConvergence{}
	if d.store != nil {
		d.provisioner.WithRecorder(d.store)
		strategy = store.Cleanup{Store: d.store}
	}
	d.destroyer = destroy.NewDestroyer(strategy)

	return d, nil
}

func newAPIClient(c config.ComputeOptions, version string) (*digitalocean.RealClient, error) {
	token := c.AccessToken()
	if token == "" {
		token = os.Getenv(TokenEnvVar)
	}
	if token == "" {
		return nil, fmt.Errorf("%w: set %s or %s", ErrMissingToken, config.KeyToken, TokenEnvVar)
	}

	opts := []digitalocean.ClientOption{
		digitalocean.WithTimeouts(config.LoadTimeouts()),
		digitalocean.WithUserAgent("dodriver/" + version),
	}
	if c.APIURL != "" {
		opts = append(opts, digitalocean.WithBaseURL(c.APIURL))
	}
	return digitalocean.NewRealClient(token, opts...)
}

// URL returns the driver URL, "digitalocean:<credential id>".
func (d *Driver) URL() string {
	return d.url
}

// Version returns the version recorded in machine locations.
func (d *Driver) Version() string {
	return d.version
}

// Config returns the resolved configuration.
func (d *Driver) Config() *config.ResolvedConfig {
	return d.cfg
}

// DefaultKeyPath returns the location of the shared default private key.
func (d *Driver) DefaultKeyPath() string {
	return d.defaultKey.Path()
}

// DryRun reports whether remote mutations are only recorded.
func (d *Driver) DryRun() bool {
	return d.actions.DryRun()
}

// Actions returns every action performed (or skipped) by this driver.
func (d *Driver) Actions() []provisioning.Action {
	return d.actions.Actions()
}

// MachineOptions returns the configured machine options with overrides
// applied on top of the bootstrap options.
func (d *Driver) MachineOptions(overrides map[string]any) (provisioning.MachineOptions, error) {
	mo, err := d.cfg.MachineOptions(overrides)
	if err != nil {
		return provisioning.MachineOptions{}, err
	}
	return provisioning.MachineOptions{
		Bootstrap: mo.BootstrapOptions,
		SSH:       mo.SSHOptions,
	}, nil
}

// Machine returns the stored spec for name, or a fresh spec when there is
// no store or the machine is unknown.
func (d *Driver) Machine(ctx context.Context, name string) (*provisioning.MachineSpec, error) {
	if d.store == nil {
		return &provisioning.MachineSpec{Name: name}, nil
	}
	spec, err := d.store.LoadMachine(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return &provisioning.MachineSpec{Name: name}, nil
	}
	return spec, err
}

// BootstrapOptionsFor resolves the bootstrap options a machine would be
// created with. Missing SSH keys are created along the way.
func (d *Driver) BootstrapOptionsFor(ctx context.Context, spec *provisioning.MachineSpec, overrides map[string]any) (config.BootstrapOptions, error) {
	ctx, span := d.startSpan(ctx, "driver.BootstrapOptionsFor", spec)
	defer span.End()

	opts, err := d.MachineOptions(overrides)
	if err != nil {
		return config.BootstrapOptions{}, endSpan(span, err)
	}
	resolved, err := d.resolver.Resolve(d.newContext(ctx), spec, opts)
	if err != nil {
		return config.BootstrapOptions{}, endSpan(span, err)
	}
	return resolved, nil
}

// AllocateMachine makes sure spec has a live droplet and stores the result.
func (d *Driver) AllocateMachine(ctx context.Context, spec *provisioning.MachineSpec, overrides map[string]any) error {
	ctx, span := d.startSpan(ctx, "driver.AllocateMachine", spec)
	defer span.End()

	opts, err := d.MachineOptions(overrides)
	if err != nil {
		return endSpan(span, err)
	}
	if err := d.provisioner.Allocate(d.newContext(ctx), spec, opts); err != nil {
		return endSpan(span, err)
	}
	span.SetAttributes(attribute.String("server.id", spec.ServerID()))

	if d.store != nil && !d.DryRun() {
		if err := d.store.SaveMachine(ctx, spec); err != nil {
			return endSpan(span, err)
		}
	}
	return nil
}

// DestroyMachine destroys the machine's droplet, if any, and forgets it.
func (d *Driver) DestroyMachine(ctx context.Context, spec *provisioning.MachineSpec) error {
	ctx, span := d.startSpan(ctx, "driver.DestroyMachine", spec)
	defer span.End()

	if err := d.destroyer.Destroy(d.newContext(ctx), spec, provisioning.MachineOptions{}); err != nil {
		return endSpan(span, err)
	}

	if d.store != nil && !d.DryRun() {
		if err := d.store.DeleteMachine(ctx, spec.Name); err != nil {
			return endSpan(span, err)
		}
	}
	return nil
}

func (d *Driver) newContext(ctx context.Context) *provisioning.Context {
	pctx := provisioning.NewContext(ctx, d.cfg, d.infra, d.url)
	pctx.Observer = d.observer
	pctx.Actions = d.actions
	pctx.Metrics = d.metrics
	pctx.DriverVersion = d.version
	return pctx
}

func (d *Driver) startSpan(ctx context.Context, name string, spec *provisioning.MachineSpec) (context.Context, trace.Span) {
	return d.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("driver.url", d.url),
		attribute.String("machine.name", spec.Name),
		attribute.Bool("dry_run", d.DryRun()),
	))
}

func endSpan(span trace.Span, err error) error {
	err = explain(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// explain adds a hint to API errors the user can act on.
func explain(err error) error {
	switch {
	case digitalocean.IsUnauthorized(err):
		return fmt.Errorf("%w (token rejected, check %s or %s)", err, config.KeyToken, TokenEnvVar)
	case digitalocean.IsRateLimited(err):
		return fmt.Errorf("%w (API rate limit reached, try again later)", err)
	default:
		return err
	}
}
