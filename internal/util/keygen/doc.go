// Package keygen manages the local half of SSH key pairs.
//
// Private keys are generated as PEM encoded RSA keys when missing. Public
// keys are derived in OpenSSH authorized_keys format together with the MD5
// fingerprint DigitalOcean uses to identify registered keys.
package keygen
