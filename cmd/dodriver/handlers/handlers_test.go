package handlers

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/dodriver/internal/platform/digitalocean"
	"github.com/imamik/dodriver/internal/store"
)

type testEnv struct {
	opts  *Options
	out   *bytes.Buffer
	infra *digitalocean.MockClient
	dir   string
}

// setupTest replaces the factory variables with an in-memory account and
// points all state into a temporary directory.
func setupTest(t *testing.T) *testEnv {
	t.Helper()

	origInfra, origOut, origErr := newInfraClient, stdout, stderr
	origInteractive, origConfirm := isInteractive, confirmDestroy
	t.Cleanup(func() {
		newInfraClient, stdout, stderr = origInfra, origOut, origErr
		isInteractive, confirmDestroy = origInteractive, origConfirm
	})

	env := &testEnv{
		out: &bytes.Buffer{},
		dir: t.TempDir(),
		infra: &digitalocean.MockClient{
			ListKeysFunc: func(context.Context) ([]digitalocean.Key, error) {
				return []digitalocean.Key{{ID: "12", Name: "deploy"}}, nil
			},
		},
	}
	newInfraClient = func() digitalocean.InfrastructureManager { return env.infra }
	stdout = env.out
	stderr = io.Discard
	isInteractive = func() bool { return false }
	confirmDestroy = func(context.Context, string, string) (bool, error) {
		t.Fatal("confirmation must not be requested")
		return false, nil
	}

	configPath := filepath.Join(env.dir, "dodriver.yaml")
	cfg := "driver_options:\n" +
		"  keys_dir: " + filepath.Join(env.dir, "keys") + "\n" +
		"  compute_options:\n" +
		"    digitalocean_token: t0k3n\n" +
		"machine_options:\n" +
		"  bootstrap_options:\n" +
		"    key_name: deploy\n"
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o600))

	env.opts = &Options{
		ConfigPath: configPath,
		DriverURL:  "digitalocean:abc",
		StatePath:  filepath.Join(env.dir, "state", "state.db"),
		Version:    "test",
	}
	return env
}

func TestParseOverrides(t *testing.T) {
	got, err := parseOverrides([]string{
		"Flavor-Name=1GB",
		"backups_enabled=true",
		"ssh_key_ids=[1, 2]",
		"image_name=14.04 x64",
		"user_data=",
	})
	require.NoError(t, err)

	assert.Equal(t, "1GB", got["flavor_name"])
	assert.Equal(t, true, got["backups_enabled"])
	assert.Equal(t, []any{1, 2}, got["ssh_key_ids"])
	assert.Equal(t, "14.04 x64", got["image_name"])
	assert.Equal(t, "", got["user_data"])

	_, err = parseOverrides([]string{"no-equals"})
	require.Error(t, err)
	_, err = parseOverrides([]string{"=value"})
	require.Error(t, err)

	got, err = parseOverrides(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResolve(t *testing.T) {
	env := setupTest(t)

	err := Resolve(context.Background(), env.opts, "web-1", []string{"flavor_name=1GB"}, OutputYAML)
	require.NoError(t, err)

	out := env.out.String()
	assert.Contains(t, out, "name: web-1")
	assert.Contains(t, out, "flavor_id: 1gb")
	assert.Contains(t, out, `image_id: "3240036"`)
	assert.Contains(t, out, "region_id: sfo1")
	assert.Zero(t, env.infra.Calls("CreateServer"))
}

func TestResolve_JSON(t *testing.T) {
	env := setupTest(t)

	require.NoError(t, Resolve(context.Background(), env.opts, "web-1", nil, OutputJSON))
	assert.Contains(t, env.out.String(), `"ssh_key_ids": [`)
}

func TestResolve_LookupFailure(t *testing.T) {
	env := setupTest(t)

	err := Resolve(context.Background(), env.opts, "web-1", []string{"region_name=Atlantis 1"}, OutputYAML)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Atlantis 1")
	assert.Empty(t, env.out.String())
}

func TestAllocateAndDestroy(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	env.opts.MetricsFile = filepath.Join(env.dir, "dodriver.prom")

	require.NoError(t, Allocate(ctx, env.opts, "web-1", nil))
	assert.Contains(t, env.out.String(), "[done] create machine web-1 on digitalocean:abc")
	assert.Contains(t, env.out.String(), "machine web-1 is droplet 1001")

	metrics, err := os.ReadFile(env.opts.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `dodriver_actions_total{outcome="succeeded"} 1`)

	env.out.Reset()
	require.NoError(t, List(ctx, env.opts, ""))
	assert.Contains(t, env.out.String(), "web-1")
	assert.Contains(t, env.out.String(), "1001")

	env.out.Reset()
	require.NoError(t, Destroy(ctx, env.opts, "web-1", false))
	assert.Contains(t, env.out.String(), "[done] destroy machine web-1 (1001 at digitalocean:abc)")
	assert.Equal(t, 1, env.infra.Calls("DestroyServer"))

	env.out.Reset()
	require.NoError(t, List(ctx, env.opts, OutputJSON))
	assert.Equal(t, "null\n", env.out.String())
}

func TestAllocate_StateDirectoryFailureReleasesSession(t *testing.T) {
	env := setupTest(t)
	origOpen := openStore
	t.Cleanup(func() { openStore = origOpen })
	openStore = func(context.Context, string) (*store.Store, error) {
		t.Fatal("store must not be opened")
		return nil, nil
	}

	blocker := filepath.Join(env.dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	env.opts.StatePath = filepath.Join(blocker, "state.db")
	env.opts.Trace = true
	env.opts.MetricsFile = filepath.Join(env.dir, "dodriver.prom")

	err := Allocate(context.Background(), env.opts, "web-1", nil)
	require.ErrorContains(t, err, "failed to create state directory")
	assert.FileExists(t, env.opts.MetricsFile, "session must be closed on setup failure")
}

func TestAllocate_DryRun(t *testing.T) {
	env := setupTest(t)
	env.opts.DryRun = true

	require.NoError(t, Allocate(context.Background(), env.opts, "web-1", nil))
	assert.Contains(t, env.out.String(), "[dry-run] create machine web-1")
	assert.NotContains(t, env.out.String(), "is droplet")
	assert.Zero(t, env.infra.Calls("CreateServer"))
}

func TestDestroy_Confirmation(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	require.NoError(t, Allocate(ctx, env.opts, "web-1", nil))
	env.out.Reset()

	isInteractive = func() bool { return true }

	t.Run("declined", func(t *testing.T) {
		asked := 0
		confirmDestroy = func(_ context.Context, machine, serverID string) (bool, error) {
			asked++
			assert.Equal(t, "web-1", machine)
			assert.Equal(t, "1001", serverID)
			return false, nil
		}

		require.NoError(t, Destroy(ctx, env.opts, "web-1", false))
		assert.Equal(t, 1, asked)
		assert.Contains(t, env.out.String(), "aborted")
		assert.Zero(t, env.infra.Calls("DestroyServer"))
	})

	t.Run("skipped with yes", func(t *testing.T) {
		confirmDestroy = func(context.Context, string, string) (bool, error) {
			t.Fatal("confirmation must not be requested")
			return false, nil
		}

		require.NoError(t, Destroy(ctx, env.opts, "web-1", true))
		assert.Equal(t, 1, env.infra.Calls("DestroyServer"))
	})
}

func TestDestroy_UnknownMachine(t *testing.T) {
	env := setupTest(t)

	require.NoError(t, Destroy(context.Background(), env.opts, "ghost", false))
	assert.Contains(t, env.out.String(), "[done] delete bootstrap record of ghost")
	assert.Zero(t, env.infra.Calls("GetServer"))
	assert.Zero(t, env.infra.Calls("DestroyServer"))
}

func TestShowConfig(t *testing.T) {
	env := setupTest(t)

	legacy := filepath.Join(env.dir, ".tugboat")
	require.NoError(t, os.WriteFile(legacy, []byte("authentication:\n  api_key: secret\ndefaults:\n  region: \"8\"\n"), 0o600))
	env.opts.LegacyPath = legacy

	require.NoError(t, ShowConfig(env.opts, OutputYAML))

	out := env.out.String()
	assert.Contains(t, out, "provider: DigitalOcean")
	assert.Contains(t, out, "digitalocean_client_id: abc")
	assert.Contains(t, out, `region_id: "8"`)
	assert.NotContains(t, out, "secret")
	assert.NotContains(t, out, "t0k3n")
	assert.Contains(t, out, redacted)
}

func TestWriteDocument_UnsupportedFormat(t *testing.T) {
	require.Error(t, writeDocument(io.Discard, map[string]string{}, "toml"))
}
