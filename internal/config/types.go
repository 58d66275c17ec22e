package config

import (
	"fmt"
	"maps"

	"gopkg.in/yaml.v3"
)

// ProviderName is the only provider this driver serves.
const ProviderName = "DigitalOcean"

// Config is the typed view of a merged configuration tree.
type Config struct {
	DriverOptions  DriverOptions  `yaml:"driver_options"`
	MachineOptions MachineOptions `yaml:"machine_options"`
}

// DriverOptions configures the driver itself.
type DriverOptions struct {
	ComputeOptions ComputeOptions `yaml:"compute_options"`
	// KeysDir holds generated private keys, including the default key.
	KeysDir string `yaml:"keys_dir,omitempty"`
}

// ComputeOptions holds provider credentials and API settings.
type ComputeOptions struct {
	Provider string `yaml:"provider" validate:"required,eq=DigitalOcean"`
	ClientID string `yaml:"digitalocean_client_id,omitempty"`
	APIKey   string `yaml:"digitalocean_api_key,omitempty"`
	Token    string `yaml:"digitalocean_token,omitempty"`
	APIURL   string `yaml:"api_url,omitempty" validate:"omitempty,url"`

	// StrictName rejects bootstrap options whose name differs from the
	// machine name instead of overwriting it.
	StrictName bool `yaml:"strict_name,omitempty"`
}

// AccessToken returns the API token: the explicit token if set, otherwise
// the api key imported from the legacy credential file.
func (c ComputeOptions) AccessToken() string {
	if c.Token != "" {
		return c.Token
	}
	return c.APIKey
}

// MachineOptions are the per-machine defaults.
type MachineOptions struct {
	BootstrapOptions BootstrapOptions `yaml:"bootstrap_options"`
	SSHOptions       SSHOptions       `yaml:"ssh_options"`
}

// SSHOptions configures how machines are reached after creation.
type SSHOptions struct {
	Port int    `yaml:"port,omitempty" json:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	User string `yaml:"user,omitempty" json:"user,omitempty"`
}

// ID is an opaque provider identifier. Numeric YAML scalars decode to
// their decimal text, so `image_id: 42` and `image_id: "42"` are equal.
type ID string

// UnmarshalYAML accepts any scalar.
func (id *ID) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: id must be a scalar", n.Line)
	}
	*id = ID(n.Value)
	return nil
}

// BootstrapOptions are the parameters handed to the provider when a machine
// is created. Symbolic fields (distribution, names) are resolved to the
// corresponding id fields before use.
type BootstrapOptions struct {
	Name    string            `yaml:"name,omitempty" json:"name,omitempty"`
	KeyName string            `yaml:"key_name,omitempty" json:"key_name,omitempty"`
	KeyPath string            `yaml:"key_path,omitempty" json:"key_path,omitempty"`
	Tags    map[string]string `yaml:"tags,omitempty" json:"tags,omitempty"`

	ImageID           ID     `yaml:"image_id,omitempty" json:"image_id,omitempty"`
	ImageDistribution string `yaml:"image_distribution,omitempty" json:"image_distribution,omitempty"`
	ImageName         string `yaml:"image_name,omitempty" json:"image_name,omitempty"`

	FlavorID   ID     `yaml:"flavor_id,omitempty" json:"flavor_id,omitempty"`
	FlavorName string `yaml:"flavor_name,omitempty" json:"flavor_name,omitempty"`
	SizeID     ID     `yaml:"size_id,omitempty" json:"size_id,omitempty"`

	RegionID   ID     `yaml:"region_id,omitempty" json:"region_id,omitempty"`
	RegionName string `yaml:"region_name,omitempty" json:"region_name,omitempty"`

	SSHKeyIDs []ID `yaml:"ssh_key_ids,omitempty" json:"ssh_key_ids,omitempty"`

	PrivateNetworking *bool  `yaml:"private_networking,omitempty" json:"private_networking,omitempty"`
	BackupsEnabled    *bool  `yaml:"backups_enabled,omitempty" json:"backups_enabled,omitempty"`
	UserData          string `yaml:"user_data,omitempty" json:"user_data,omitempty"`
}

// Clone returns a copy that shares no maps, slices or pointers with o.
func (o BootstrapOptions) Clone() BootstrapOptions {
	c := o
	if o.Tags != nil {
		c.Tags = maps.Clone(o.Tags)
	}
	if o.SSHKeyIDs != nil {
		c.SSHKeyIDs = append([]ID(nil), o.SSHKeyIDs...)
	}
	if o.PrivateNetworking != nil {
		v := *o.PrivateNetworking
		c.PrivateNetworking = &v
	}
	if o.BackupsEnabled != nil {
		v := *o.BackupsEnabled
		c.BackupsEnabled = &v
	}
	return c
}

// Clone returns a deep copy of the configuration.
func (c Config) Clone() Config {
	out := c
	out.MachineOptions.BootstrapOptions = c.MachineOptions.BootstrapOptions.Clone()
	return out
}

// Decode converts a configuration tree into the typed Config.
// Keys the typed view does not model are ignored.
func Decode(tree Layer) (Config, error) {
	var cfg Config
	if err := decodeInto(map[string]any(tree), &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// DecodeBootstrapOptions converts a loosely keyed option map into
// BootstrapOptions. Keys are normalized first.
func DecodeBootstrapOptions(m map[string]any) (BootstrapOptions, error) {
	var opts BootstrapOptions
	if err := decodeInto(map[string]any(NormalizeLayer(m)), &opts); err != nil {
		return BootstrapOptions{}, fmt.Errorf("failed to decode bootstrap options: %w", err)
	}
	return opts, nil
}

func decodeInto(m map[string]any, out any) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}
