// Package handlers implements the business logic for CLI commands.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gopkg.in/yaml.v3"

	"github.com/imamik/dodriver/internal/config"
	"github.com/imamik/dodriver/internal/driver"
	"github.com/imamik/dodriver/internal/metrics"
	"github.com/imamik/dodriver/internal/platform/digitalocean"
	"github.com/imamik/dodriver/internal/store"
)

// Options are the global CLI flags.
type Options struct {
	ConfigPath  string
	DriverURL   string
	LegacyPath  string
	StatePath   string
	DryRun      bool
	Verbose     bool
	MetricsFile string
	Trace       bool
	Version     string
}

// Factory function variables - can be replaced in tests.
var (
	// newInfraClient returns the provider client handed to the driver.
	// nil lets the driver build the API client from the resolved token.
	newInfraClient = func() digitalocean.InfrastructureManager { return nil }

	openStore = store.Open

	isInteractive = isInteractiveTTY

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// DefaultStatePath returns ~/.dodriver/state.db.
func DefaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "dodriver.db"
	}
	return filepath.Join(home, ".dodriver", "state.db")
}

// session is one opened driver together with the resources the CLI owns
// around it.
type session struct {
	driver   *driver.Driver
	store    *store.Store
	registry *prometheus.Registry
	tracer   *sdktrace.TracerProvider
	opts     *Options
}

// openSession opens the driver for opts. withStore also opens the state file.
func openSession(ctx context.Context, opts *Options, withStore bool) (*session, error) {
	explicit, err := config.LoadFile(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	s := &session{
		registry: prometheus.NewRegistry(),
		opts:     opts,
	}
	recorder, err := metrics.NewRecorder(s.registry)
	if err != nil {
		return nil, err
	}

	if opts.Trace {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(stderr), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		s.tracer = sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	}

	if withStore {
		path := opts.StatePath
		if path == "" {
			path = DefaultStatePath()
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			_ = s.Close(ctx)
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
		s.store, err = openStore(ctx, path)
		if err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
	}

	driverOpts := driver.Options{
		Explicit:   explicit,
		LegacyPath: opts.LegacyPath,
		Infra:      newInfraClient(),
		Logger:     newLogger(stderr, opts.Verbose),
		Metrics:    recorder,
		DryRun:     opts.DryRun,
		Store:      s.store,
		Version:    opts.Version,
	}
	if s.tracer != nil {
		driverOpts.TracerProvider = s.tracer
	}

	reg := driver.NewRegistry()
	if err := driver.RegisterDigitalOcean(reg); err != nil {
		_ = s.Close(ctx)
		return nil, err
	}
	s.driver, err = reg.Open(ctx, opts.DriverURL, driverOpts)
	if err != nil {
		_ = s.Close(ctx)
		return nil, err
	}
	return s, nil
}

// Close flushes traces, writes the metrics file and closes the state file.
func (s *session) Close(ctx context.Context) error {
	var errs []error
	if s.tracer != nil {
		errs = append(errs, s.tracer.Shutdown(ctx))
	}
	if s.opts.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(s.opts.MetricsFile, s.registry); err != nil {
			errs = append(errs, fmt.Errorf("failed to write metrics file: %w", err))
		}
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	return errors.Join(errs...)
}

// newLogger logs to w. Verbose enables V(1) messages.
func newLogger(w io.Writer, verbose bool) logr.Logger {
	verbosity := 0
	if verbose {
		verbosity = 1
	}
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(w, args)
	}, funcr.Options{Verbosity: verbosity})
}

// parseOverrides turns "key=value" pairs into bootstrap option overrides.
// Values are read as YAML scalars or flow collections, so "true" is a bool
// and "[1, 2]" a list.
func parseOverrides(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid option %q: expected key=value", pair)
		}
		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", key, err)
		}
		if value == nil {
			value = raw
		}
		out[config.NormalizeKey(key)] = value
	}
	return out, nil
}

func isInteractiveTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
