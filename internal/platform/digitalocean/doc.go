// Package digitalocean provides a thin wrapper around the DigitalOcean API
// client (godo) exposing exactly the calls the driver needs.
//
// # Architecture
//
//   - client.go: interfaces and the provider-neutral record types
//   - real_client.go: RealClient construction on top of godo
//   - catalog.go: paginated image, size, region and key listings
//   - server.go: droplet lookup, creation and deletion
//   - ssh_key.go: SSH key creation and deletion
//   - errors.go: error classification
//   - mock_client.go: MockClient for tests in other packages
//
// Catalog listings always return the full result set in the order the API
// returns it. Nothing is cached between calls and no call is retried; a
// failed request is returned to the caller as is.
//
// Sizes are exposed as flavors named after their memory ("512MB", "1GB"),
// the naming the DigitalOcean v1 API used. Several sizes may share a name.
package digitalocean
