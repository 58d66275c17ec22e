package handlers

import (
	"github.com/imamik/dodriver/internal/config"
	"github.com/imamik/dodriver/internal/driver"
)

const redacted = "<redacted>"

// ShowConfig prints the merged configuration tree with credentials redacted.
// No API call is made.
func ShowConfig(opts *Options, output string) error {
	explicit, err := config.LoadFile(opts.ConfigPath)
	if err != nil {
		return err
	}
	_, credentialID, err := driver.ParseURL(opts.DriverURL)
	if err != nil {
		return err
	}
	resolved, err := config.Resolve(credentialID, explicit, opts.LegacyPath)
	if err != nil {
		return err
	}

	tree := resolved.Tree()
	for _, key := range []string{config.KeyAPIKey, config.KeyToken} {
		if _, ok := tree.Get(config.KeyDriverOptions, config.KeyComputeOptions, key); ok {
			tree.Set(redacted, config.KeyDriverOptions, config.KeyComputeOptions, key)
		}
	}
	return writeDocument(stdout, map[string]any(tree), output)
}
