package naming

import (
	"fmt"
	"path/filepath"
)

// DefaultKeyName is the shared key used when a machine names no key file.
const DefaultKeyName = "machine_default"

// DriverScheme prefixes every DigitalOcean driver URL.
const DriverScheme = "digitalocean"

// DriverURL returns the driver URL for a credential id.
func DriverURL(credentialID string) string {
	return fmt.Sprintf("%s:%s", DriverScheme, credentialID)
}

// KeyName derives a key name from the base name of a private key path.
func KeyName(privateKeyPath string) string {
	return filepath.Base(privateKeyPath)
}

func DefaultKeyPath(keysDir string) string {
	return filepath.Join(keysDir, DefaultKeyName)
}

func CreateMachine(machine, driverURL string) string {
	return fmt.Sprintf("create machine %s on %s", machine, driverURL)
}

func DestroyMachine(machine, serverID, driverURL string) string {
	return fmt.Sprintf("destroy machine %s (%s at %s)", machine, serverID, driverURL)
}

func GenerateKey(path string) string {
	return fmt.Sprintf("generate private key %s", path)
}

func CreateKey(name, driverURL string) string {
	return fmt.Sprintf("create key pair %s on %s", name, driverURL)
}

func ReplaceKey(name, driverURL string) string {
	return fmt.Sprintf("update key pair %s on %s", name, driverURL)
}
