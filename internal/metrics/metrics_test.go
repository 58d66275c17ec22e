package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/dodriver/internal/provisioning"
)

func TestRecorder_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	require.NoError(t, err)

	r.CatalogLookup("flavors", true)
	r.CatalogLookup("flavors", true)
	r.CatalogLookup("regions", false)
	r.ActionPerformed(provisioning.OutcomeSucceeded)
	r.ActionPerformed(provisioning.OutcomeSkipped)
	r.MachineDestroyed(true)
	r.MachineDestroyed(false)
	r.MachineDestroyed(false)

	assert.Equal(t, float64(2), testutil.ToFloat64(r.catalogLookups.WithLabelValues("flavors", "matched")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.catalogLookups.WithLabelValues("regions", "no_match")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.actions.WithLabelValues("skipped")))
	assert.Equal(t, float64(2), testutil.ToFloat64(r.machinesDestroyed.WithLabelValues("false")))

	expected := `
# HELP dodriver_actions_total Recorded provider mutations by outcome
# TYPE dodriver_actions_total counter
dodriver_actions_total{outcome="skipped"} 1
dodriver_actions_total{outcome="succeeded"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "dodriver_actions_total"))
}

func TestNewRecorder_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewRecorder(reg)
	require.NoError(t, err)

	_, err = NewRecorder(reg)
	assert.Error(t, err)
}
