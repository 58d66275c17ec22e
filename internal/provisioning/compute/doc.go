// Package compute turns machine requests into DigitalOcean droplets.
//
// The Resolver translates symbolic bootstrap options (image distribution
// and name, flavor name, region name, key name) into provider ids by
// querying the account catalogs, applying defaults for anything left
// unset. The Provisioner creates the droplet from the resolved options
// and records its location on the machine spec.
package compute
