// Package keys reconciles SSH key pairs between the local disk and the
// DigitalOcean account.
//
// Reconciler.Ensure makes sure a named remote key matches a local private
// key, generating the private key when it does not exist yet. The
// DefaultKeyProvider manages the shared key used by machines that do not
// name a key file.
package keys
