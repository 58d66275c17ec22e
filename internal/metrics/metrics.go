// Package metrics exposes the driver's Prometheus counters.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/imamik/dodriver/internal/provisioning"
)

const namespace = "dodriver"

// Recorder implements provisioning.MetricsRecorder with Prometheus counters.
type Recorder struct {
	catalogLookups    *prometheus.CounterVec
	actions           *prometheus.CounterVec
	machinesDestroyed *prometheus.CounterVec
}

// NewRecorder creates the counters and registers them on reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		catalogLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_lookups_total",
				Help:      "Catalog lookups by catalog and result",
			},
			[]string{"catalog", "result"},
		),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_total",
				Help:      "Recorded provider mutations by outcome",
			},
			[]string{"outcome"},
		),
		machinesDestroyed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "machines_destroyed_total",
				Help:      "Destroyed machines, by whether a remote destroy call was needed",
			},
			[]string{"remote"},
		),
	}

	for _, c := range []prometheus.Collector{r.catalogLookups, r.actions, r.machinesDestroyed} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	return r, nil
}

// CatalogLookup counts a symbolic lookup against catalog.
func (r *Recorder) CatalogLookup(catalog string, matched bool) {
	result := "matched"
	if !matched {
		result = "no_match"
	}
	r.catalogLookups.WithLabelValues(catalog, result).Inc()
}

// ActionPerformed counts a recorded action.
func (r *Recorder) ActionPerformed(outcome provisioning.Outcome) {
	r.actions.WithLabelValues(string(outcome)).Inc()
}

// MachineDestroyed counts a destroyed machine.
func (r *Recorder) MachineDestroyed(remote bool) {
	r.machinesDestroyed.WithLabelValues(fmt.Sprint(remote)).Inc()
}

var _ provisioning.MetricsRecorder = (*Recorder)(nil)
