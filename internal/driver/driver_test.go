package driver_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"

	"github.com/digitalocean/godo"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/imamik/dodriver/internal/config"
	"github.com/imamik/dodriver/internal/driver"
	"github.com/imamik/dodriver/internal/platform/digitalocean"
	"github.com/imamik/dodriver/internal/provisioning"
	"github.com/imamik/dodriver/internal/store"
)

// account is an in-memory DigitalOcean account with the default catalogs.
type account struct {
	*digitalocean.MockClient

	mu        sync.Mutex
	keys      []digitalocean.Key
	servers   map[string]*digitalocean.Server
	destroyed []string
}

func newAccount() *account {
	a := &account{
		keys:    []digitalocean.Key{{ID: "12", Name: "deploy"}},
		servers: map[string]*digitalocean.Server{},
	}
	a.MockClient = &digitalocean.MockClient{
		ListKeysFunc: func(context.Context) ([]digitalocean.Key, error) {
			a.mu.Lock()
			defer a.mu.Unlock()
			return append([]digitalocean.Key(nil), a.keys...), nil
		},
		CreateKeyFunc: func(_ context.Context, name, publicKey string) (*digitalocean.Key, error) {
			a.mu.Lock()
			defer a.mu.Unlock()
			k := digitalocean.Key{ID: "2001", Name: name, PublicKey: publicKey}
			a.keys = append(a.keys, k)
			return &k, nil
		},
		GetServerFunc: func(_ context.Context, id string) (*digitalocean.Server, error) {
			a.mu.Lock()
			defer a.mu.Unlock()
			return a.servers[id], nil
		},
		CreateServerFunc: func(_ context.Context, opts digitalocean.ServerCreateOpts) (*digitalocean.Server, error) {
			a.mu.Lock()
			defer a.mu.Unlock()
			s := &digitalocean.Server{ID: "1001", Name: opts.Name, State: "new"}
			a.servers[s.ID] = s
			return s, nil
		},
		DestroyServerFunc: func(_ context.Context, id string) error {
			a.mu.Lock()
			defer a.mu.Unlock()
			delete(a.servers, id)
			a.destroyed = append(a.destroyed, id)
			return nil
		},
	}
	return a
}

var _ = Describe("Driver", func() {
	var (
		ctx      context.Context
		acct     *account
		keysDir  string
		explicit config.Layer
		spans    *tracetest.SpanRecorder
		opts     driver.Options
	)

	BeforeEach(func() {
		ctx = context.Background()
		acct = newAccount()
		keysDir = filepath.Join(GinkgoT().TempDir(), "keys")
		explicit = config.Layer{
			"driver_options": map[string]any{"keys_dir": keysDir},
		}
		spans = tracetest.NewSpanRecorder()
		opts = driver.Options{
			Explicit:       explicit,
			Infra:          acct,
			TracerProvider: sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans)),
			Version:        "1.2.3",
		}
	})

	open := func(url string) *driver.Driver {
		reg := driver.NewRegistry()
		Expect(driver.RegisterDigitalOcean(reg)).To(Succeed())
		d, err := reg.Open(ctx, url, opts)
		Expect(err).NotTo(HaveOccurred())
		return d
	}

	Describe("construction", func() {
		It("takes the credential id from the url", func() {
			d := open("digitalocean:abc")
			Expect(d.URL()).To(Equal("digitalocean:abc"))
			Expect(d.Version()).To(Equal("1.2.3"))
			Expect(d.Config().Config().DriverOptions.ComputeOptions.Provider).To(Equal(config.ProviderName))
			Expect(d.DefaultKeyPath()).To(Equal(filepath.Join(keysDir, "machine_default")))
		})

		It("falls back to the legacy credential id", func() {
			legacy := filepath.Join(GinkgoT().TempDir(), ".tugboat")
			Expect(os.WriteFile(legacy, []byte("authentication:\n  client_key: legacy-id\n  api_key: secret\n"), 0o600)).To(Succeed())
			opts.LegacyPath = legacy

			d := open("digitalocean")
			Expect(d.URL()).To(Equal("digitalocean:legacy-id"))
			Expect(d.Config().Config().DriverOptions.ComputeOptions.AccessToken()).To(Equal("secret"))
		})

		It("requires a token without an injected client", func() {
			GinkgoT().Setenv(driver.TokenEnvVar, "")
			opts.Infra = nil
			_, err := driver.New(ctx, "abc", opts)
			Expect(err).To(MatchError(driver.ErrMissingToken))
		})

		It("builds an API client from the configured token", func() {
			opts.Infra = nil
			opts.Explicit = config.Layer{
				"driver_options": map[string]any{
					"compute_options": map[string]any{"digitalocean_token": "t0k3n"},
				},
			}
			_, err := driver.New(ctx, "abc", opts)
			Expect(err).NotTo(HaveOccurred())
		})

		It("surfaces malformed legacy files", func() {
			legacy := filepath.Join(GinkgoT().TempDir(), ".tugboat")
			Expect(os.WriteFile(legacy, []byte("defaults: [unclosed"), 0o600)).To(Succeed())
			opts.LegacyPath = legacy

			_, err := driver.New(ctx, "abc", opts)
			Expect(err).To(MatchError(config.ErrMalformedCredentialFile))
		})
	})

	Describe("BootstrapOptionsFor", func() {
		It("resolves overrides against the catalogs", func() {
			d := open("digitalocean:abc")
			spec := &provisioning.MachineSpec{Name: "web-1", ID: "m-1"}

			resolved, err := d.BootstrapOptionsFor(ctx, spec, map[string]any{
				"Flavor-Name": "1GB",
				":key_name":   "deploy",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resolved.Name).To(Equal("web-1"))
			Expect(resolved.FlavorID).To(Equal(config.ID("1gb")))
			Expect(resolved.ImageID).To(Equal(config.ID("3240036")))
			Expect(resolved.RegionID).To(Equal(config.ID("sfo1")))
			Expect(resolved.SSHKeyIDs).To(Equal([]config.ID{"12"}))
			Expect(resolved.Tags).To(HaveKeyWithValue("BootstrapId", "m-1"))
			Expect(acct.Calls("CreateServer")).To(BeZero())
		})

		It("creates the default key when none is named", func() {
			d := open("digitalocean:abc")

			resolved, err := d.BootstrapOptionsFor(ctx, &provisioning.MachineSpec{Name: "web-1"}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(resolved.KeyName).To(Equal("machine_default"))
			Expect(resolved.SSHKeyIDs).To(Equal([]config.ID{"2001"}))
			Expect(filepath.Join(keysDir, "machine_default")).To(BeAnExistingFile())
			Expect(acct.Calls("CreateKey")).To(Equal(1))
		})

		It("records a failed span on lookup errors", func() {
			d := open("digitalocean:abc")

			_, err := d.BootstrapOptionsFor(ctx, &provisioning.MachineSpec{Name: "web-1"}, map[string]any{
				"key_name":    "deploy",
				"region_name": "Atlantis 1",
			})
			Expect(err).To(HaveOccurred())

			ended := spans.Ended()
			Expect(ended).To(HaveLen(1))
			Expect(ended[0].Name()).To(Equal("driver.BootstrapOptionsFor"))
			Expect(ended[0].Status().Code.String()).To(Equal("Error"))
		})

		DescribeTable("explains API errors the user can act on",
			func(status int, hint string) {
				acct.ListImagesFunc = func(context.Context) ([]digitalocean.Image, error) {
					return nil, &godo.ErrorResponse{
						Response: &http.Response{
							StatusCode: status,
							Request:    httptest.NewRequest(http.MethodGet, "/v2/images", nil),
						},
						Message: http.StatusText(status),
					}
				}
				d := open("digitalocean:abc")

				_, err := d.BootstrapOptionsFor(ctx, &provisioning.MachineSpec{Name: "web-1"}, map[string]any{"key_name": "deploy"})
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring(hint))

				var apiErr *godo.ErrorResponse
				Expect(errors.As(err, &apiErr)).To(BeTrue())
			},
			Entry("rejected token", http.StatusUnauthorized, "check digitalocean_token or DIGITALOCEAN_TOKEN"),
			Entry("rate limit", http.StatusTooManyRequests, "try again later"),
		)
	})

	Describe("lifecycle", func() {
		var st *store.Store

		BeforeEach(func() {
			var err error
			st, err = store.Open(ctx, filepath.Join(GinkgoT().TempDir(), "state.db"))
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(st.Close)
			opts.Store = st
		})

		It("allocates, persists and destroys a machine", func() {
			d := open("digitalocean:abc")

			spec, err := d.Machine(ctx, "web-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(spec.Location).To(BeNil())

			Expect(d.AllocateMachine(ctx, spec, map[string]any{"key_name": "deploy"})).To(Succeed())
			Expect(spec.ServerID()).To(Equal("1001"))
			Expect(spec.Location.DriverURL).To(Equal("digitalocean:abc"))
			Expect(spec.Location.DriverVersion).To(Equal("1.2.3"))

			stored, err := d.Machine(ctx, "web-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.ServerID()).To(Equal("1001"))
			_, err = st.LoadBootstrap(ctx, "web-1")
			Expect(err).NotTo(HaveOccurred())

			// A second allocation keeps the live droplet.
			Expect(d.AllocateMachine(ctx, stored, map[string]any{"key_name": "deploy"})).To(Succeed())
			Expect(acct.Calls("CreateServer")).To(Equal(1))

			Expect(d.DestroyMachine(ctx, stored)).To(Succeed())
			Expect(acct.destroyed).To(Equal([]string{"1001"}))
			Expect(stored.Location).To(BeNil())

			_, err = st.LoadMachine(ctx, "web-1")
			Expect(err).To(MatchError(store.ErrNotFound))
			_, err = st.LoadBootstrap(ctx, "web-1")
			Expect(err).To(MatchError(store.ErrNotFound))

			Expect(d.Actions()).To(HaveLen(3))
		})

		It("treats an already deleted droplet as destroyed", func() {
			d := open("digitalocean:abc")
			spec := &provisioning.MachineSpec{
				Name:     "web-1",
				Location: &provisioning.Location{ServerID: "404"},
			}
			Expect(st.SaveMachine(ctx, spec)).To(Succeed())

			Expect(d.DestroyMachine(ctx, spec)).To(Succeed())
			Expect(acct.Calls("DestroyServer")).To(BeZero())
			Expect(spec.Location).To(BeNil())
		})

		It("records without mutating in dry-run mode", func() {
			opts.DryRun = true
			d := open("digitalocean:abc")
			Expect(d.DryRun()).To(BeTrue())

			spec := &provisioning.MachineSpec{Name: "web-1"}
			Expect(d.AllocateMachine(ctx, spec, map[string]any{"key_name": "deploy"})).To(Succeed())
			Expect(spec.Location).To(BeNil())
			Expect(acct.Calls("CreateServer")).To(BeZero())

			machines, err := st.ListMachines(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(machines).To(BeEmpty())
			Expect(d.Actions()[0].Outcome).To(Equal(provisioning.OutcomeSkipped))
		})
	})
})
