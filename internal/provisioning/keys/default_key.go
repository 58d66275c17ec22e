package keys

import (
	"fmt"
	"sync"

	"github.com/imamik/dodriver/internal/provisioning"
	"github.com/imamik/dodriver/internal/util/naming"
)

// DefaultKeyProvider supplies a key for machines that name no key file.
type DefaultKeyProvider struct {
	keysDir    string
	reconciler Reconciler

	// mu serializes access to the shared private key file.
	mu sync.Mutex
}

// NewDefaultKeyProvider stores the default private key in keysDir.
func NewDefaultKeyProvider(keysDir string) *DefaultKeyProvider {
	return &DefaultKeyProvider{
		keysDir:    keysDir,
		reconciler: Reconciler{AllowOverwrite: true},
	}
}

// Path returns the location of the default private key.
func (p *DefaultKeyProvider) Path() string {
	return naming.DefaultKeyPath(p.keysDir)
}

// EnsureDefault returns the key name a machine should use. A preferred
// name is used as is; the remote catalog check happens during resolution.
// Otherwise the shared default key is generated locally if needed and
// uploaded, replacing any stale remote copy.
func (p *DefaultKeyProvider) EnsureDefault(ctx *provisioning.Context, preferred string) (string, error) {
	if preferred != "" {
		return preferred, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.reconciler.Ensure(ctx, naming.DefaultKeyName, p.Path()); err != nil {
		return "", fmt.Errorf("failed to ensure default key: %w", err)
	}
	return naming.DefaultKeyName, nil
}
