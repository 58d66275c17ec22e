package keygen

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"
)

// DefaultBits is the RSA size used when a missing private key is generated.
const DefaultBits = 2048

// KeyPair holds an RSA key pair in ready-to-use formats.
type KeyPair struct {
	// PrivateKey is the RSA private key in PEM-encoded PKCS#1 format.
	PrivateKey []byte
	// PublicKey is the public key in OpenSSH authorized_keys format.
	PublicKey []byte
}

// PublicKey is the material uploaded to the provider for a local private key.
type PublicKey struct {
	// AuthorizedKey is the single-line OpenSSH form, without trailing newline.
	AuthorizedKey string
	// Fingerprint is the colon separated MD5 fingerprint DigitalOcean reports.
	Fingerprint string
}

// GenerateRSAKeyPair generates a new RSA key pair with the specified bit size.
// Common bit sizes are 2048 (minimum recommended) and 4096 (high security).
func GenerateRSAKeyPair(bits int) (*KeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA private key: %w", err)
	}
	if err := privateKey.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate RSA private key: %w", err)
	}

	privateKeyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})

	pub, err := ssh.NewPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH public key: %w", err)
	}

	return &KeyPair{
		PrivateKey: privateKeyPEM,
		PublicKey:  ssh.MarshalAuthorizedKey(pub),
	}, nil
}

// EnsurePrivateKey makes sure a private key exists at path, generating an
// RSA key of DefaultBits when the file is missing. It reports whether a new
// key was written.
func EnsurePrivateKey(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to stat private key %s: %w", path, err)
	}

	pair, err := GenerateRSAKeyPair(DefaultBits)
	if err != nil {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return false, fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(path, pair.PrivateKey, 0o600); err != nil {
		return false, fmt.Errorf("failed to write private key: %w", err)
	}
	if err := os.WriteFile(path+".pub", pair.PublicKey, 0o644); err != nil { // #nosec G306
		return false, fmt.Errorf("failed to write public key: %w", err)
	}
	return true, nil
}

// LoadPublicKey derives the public key and its fingerprint from the
// private key stored at path.
func LoadPublicKey(path string) (*PublicKey, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key %s: %w", path, err)
	}
	return describe(signer.PublicKey()), nil
}

// ParseAuthorizedKey computes the fingerprint of an OpenSSH public key line.
func ParseAuthorizedKey(line string) (*PublicKey, error) {
	pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(line))
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return describe(pub), nil
}

func describe(pub ssh.PublicKey) *PublicKey {
	return &PublicKey{
		AuthorizedKey: strings.TrimSpace(string(ssh.MarshalAuthorizedKey(pub))),
		Fingerprint:   ssh.FingerprintLegacyMD5(pub),
	}
}
