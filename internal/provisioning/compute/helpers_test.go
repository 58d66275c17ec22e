package compute

import (
	"context"
	"sync"

	"github.com/imamik/dodriver/internal/platform/digitalocean"
	"github.com/imamik/dodriver/internal/provisioning"
)

type stubKeys struct {
	calls []string
	err   error
}

func (s *stubKeys) Ensure(_ *provisioning.Context, name, path string) error {
	s.calls = append(s.calls, name+"="+path)
	return s.err
}

type stubDefaultKey struct {
	preferred []string
	err       error
}

func (s *stubDefaultKey) EnsureDefault(_ *provisioning.Context, preferred string) (string, error) {
	s.preferred = append(s.preferred, preferred)
	if s.err != nil {
		return "", s.err
	}
	if preferred != "" {
		return preferred, nil
	}
	return "machine_default", nil
}

type lookupMetrics struct {
	provisioning.NopMetrics
	mu      sync.Mutex
	lookups map[string][]bool
}

func (m *lookupMetrics) CatalogLookup(catalog string, matched bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookups == nil {
		m.lookups = map[string][]bool{}
	}
	m.lookups[catalog] = append(m.lookups[catalog], matched)
}

// newInfra returns a mock account with the default catalogs and the shared
// default key registered.
func newInfra() *digitalocean.MockClient {
	return &digitalocean.MockClient{
		ListKeysFunc: func(context.Context) ([]digitalocean.Key, error) {
			return []digitalocean.Key{
				{ID: "11", Name: "machine_default"},
				{ID: "12", Name: "deploy"},
			}, nil
		},
	}
}

type fixture struct {
	ctx        *provisioning.Context
	infra      *digitalocean.MockClient
	observer   *provisioning.MemoryObserver
	actions    *provisioning.RecordingActionHandler
	metrics    *lookupMetrics
	keys       *stubKeys
	defaultKey *stubDefaultKey
	resolver   *Resolver
}

func newFixture(infra *digitalocean.MockClient, dryRun bool) *fixture {
	f := &fixture{
		infra:      infra,
		observer:   provisioning.NewMemoryObserver(),
		metrics:    &lookupMetrics{},
		keys:       &stubKeys{},
		defaultKey: &stubDefaultKey{},
	}
	f.actions = provisioning.NewRecordingActionHandler(f.observer, f.metrics, dryRun)
	f.ctx = provisioning.NewContext(context.Background(), nil, infra, "digitalocean:abc")
	f.ctx.Observer = f.observer
	f.ctx.Actions = f.actions
	f.ctx.Metrics = f.metrics
	f.resolver = &Resolver{
		Keys:       f.keys,
		DefaultKey: f.defaultKey,
		Host:       "laptop",
		User:       "alice",
	}
	return f
}
