package digitalocean

import "context"

// StateArchive is the terminal droplet status.
const StateArchive = "archive"

// Image is an entry of the image catalog.
type Image struct {
	ID           string
	Name         string
	Distribution string
	Slug         string
}

// Flavor is an entry of the size catalog. ID is the size slug.
type Flavor struct {
	ID     string
	Name   string
	Memory int
	VCPUs  int
}

// Region is an entry of the region catalog. ID is the region slug.
type Region struct {
	ID        string
	Name      string
	Available bool
}

// Key is an SSH key registered with the account.
type Key struct {
	ID          string
	Name        string
	Fingerprint string
	PublicKey   string
}

// Server is a droplet.
type Server struct {
	ID     string
	Name   string
	State  string
	Region string
}

// ServerCreateOpts holds all parameters for creating a droplet.
type ServerCreateOpts struct {
	Name              string
	Region            string
	Size              string
	ImageID           string
	SSHKeyIDs         []string
	Tags              []string
	Backups           bool
	PrivateNetworking bool
	UserData          string
}

// CatalogReader lists the provider catalogs used to resolve symbolic names.
type CatalogReader interface {
	ListImages(ctx context.Context) ([]Image, error)
	ListFlavors(ctx context.Context) ([]Flavor, error)
	ListRegions(ctx context.Context) ([]Region, error)
	ListKeys(ctx context.Context) ([]Key, error)
}

// ServerProvisioner defines the droplet lifecycle calls.
type ServerProvisioner interface {
	// GetServer returns the droplet with the given id, or nil if it does not exist.
	GetServer(ctx context.Context, id string) (*Server, error)
	CreateServer(ctx context.Context, opts ServerCreateOpts) (*Server, error)
	// DestroyServer deletes the droplet. Deleting a missing droplet succeeds.
	DestroyServer(ctx context.Context, id string) error
}

// SSHKeyManager defines the SSH key mutations.
type SSHKeyManager interface {
	CreateKey(ctx context.Context, name, publicKey string) (*Key, error)
	DeleteKey(ctx context.Context, id string) error
}

// InfrastructureManager combines all provider interfaces.
type InfrastructureManager interface {
	CatalogReader
	ServerProvisioner
	SSHKeyManager
}
