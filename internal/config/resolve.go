package config

import (
	"os"
	"path/filepath"
)

// Defaults returns the built-in configuration layer.
func Defaults() Layer {
	l := Layer{
		KeyDriverOptions: map[string]any{
			KeyComputeOptions: map[string]any{},
		},
		KeyMachineOptions: map[string]any{
			KeyBootstrapOptions: map[string]any{},
			KeySSHOptions:       map[string]any{},
		},
	}
	if home, err := os.UserHomeDir(); err == nil {
		l.Set(filepath.Join(home, ".dodriver", "keys"), KeyDriverOptions, KeyKeysDir)
	}
	return l
}

// ResolvedConfig is the result of merging the three configuration layers.
// It is never modified after Resolve returns; accessors hand out copies.
type ResolvedConfig struct {
	tree         Layer
	cfg          Config
	credentialID string
}

// Resolve builds the driver configuration.
//
// The explicit layer is the user's configuration with the provider forced to
// DigitalOcean and, when credentialID is non-empty (it comes from the driver
// URL), the client id overridden. legacyPath names the tugboat file; a
// missing file contributes nothing.
func Resolve(credentialID string, explicit Layer, legacyPath string) (*ResolvedConfig, error) {
	overlay := NormalizeLayer(explicit)
	overlay.Set(ProviderName, KeyDriverOptions, KeyComputeOptions, KeyProvider)
	if credentialID != "" {
		overlay.Set(credentialID, KeyDriverOptions, KeyComputeOptions, KeyClientID)
	}

	legacy, err := ImportLegacyFile(legacyPath)
	if err != nil {
		return nil, err
	}

	tree, id := MergeLayers(overlay, legacy.Layer(), Defaults())

	cfg, err := Decode(tree)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &ResolvedConfig{tree: tree, cfg: cfg, credentialID: id}, nil
}

// Tree returns a copy of the merged configuration tree.
func (r *ResolvedConfig) Tree() Layer {
	return r.tree.Clone()
}

// Config returns a copy of the typed configuration.
func (r *ResolvedConfig) Config() Config {
	return r.cfg.Clone()
}

// CredentialID returns the resolved DigitalOcean client id.
func (r *ResolvedConfig) CredentialID() string {
	return r.credentialID
}

// MachineOptions returns the machine defaults with overrides applied on top.
// overrides uses bootstrap option names as keys, e.g. {"flavor_name": "1GB"}.
func (r *ResolvedConfig) MachineOptions(overrides map[string]any) (MachineOptions, error) {
	if len(overrides) == 0 {
		return r.Config().MachineOptions, nil
	}
	top := Layer{}
	top.Set(map[string]any(NormalizeLayer(overrides)), KeyMachineOptions, KeyBootstrapOptions)
	merged, _ := MergeLayers(top, r.tree, nil)

	cfg, err := Decode(merged)
	if err != nil {
		return MachineOptions{}, err
	}
	return cfg.MachineOptions, nil
}
