// Package driver assembles the DigitalOcean machine driver.
//
// A [Registry] maps provider names to factories. Opening a driver URL of the
// form "<provider>:<credential id>" resolves the configuration once, builds
// the provider client and wires the bootstrap resolver, the key reconciler,
// the allocator and the destroyer around it.
//
//	reg := driver.NewRegistry()
//	_ = driver.RegisterDigitalOcean(reg)
//	d, err := reg.Open(ctx, "digitalocean:abc123", driver.Options{})
package driver
