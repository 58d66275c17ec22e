package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LegacyFileName is the tugboat credential file, written by "tugboat authorize".
const LegacyFileName = ".tugboat"

// DefaultLegacyPath returns ~/.tugboat, or "" when the home directory is unknown.
func DefaultLegacyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, LegacyFileName)
}

// LegacyDefaults is the sparse projection of a legacy credential file.
// A nil field was absent (or empty) in the source file.
type LegacyDefaults struct {
	ClientID *string
	APIKey   *string

	RegionID          *string
	ImageID           *string
	SizeID            *string
	PrivateNetworking *bool
	BackupsEnabled    *bool
	KeyName           *string

	KeyPath *string
	// SSHPort is copied verbatim. Range and type checks happen when the
	// merged configuration is decoded and validated.
	SSHPort *string
}

// legacyString accepts any YAML scalar, so unquoted numbers and booleans
// read the same as their quoted forms.
type legacyString string

func (s *legacyString) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar value", n.Line)
	}
	*s = legacyString(n.Value)
	return nil
}

type tugboatFile struct {
	Authentication *struct {
		ClientKey legacyString `yaml:"client_key"`
		APIKey    legacyString `yaml:"api_key"`
	} `yaml:"authentication"`
	Defaults *struct {
		Region            legacyString `yaml:"region"`
		Image             legacyString `yaml:"image"`
		Size              legacyString `yaml:"size"`
		PrivateNetworking legacyString `yaml:"private_networking"`
		BackupsEnabled    legacyString `yaml:"backups_enabled"`
		SSHKey            legacyString `yaml:"ssh_key"`
	} `yaml:"defaults"`
	SSH *struct {
		KeyPath legacyString `yaml:"ssh_key_path"`
		Port    legacyString `yaml:"ssh_port"`
	} `yaml:"ssh"`
}

// ImportLegacyFile reads the legacy credential file at path.
// A missing file (or an empty path) yields empty defaults and no error.
// Content that is not the expected YAML structure fails with an *ImportError
// matching ErrMalformedCredentialFile.
func ImportLegacyFile(path string) (*LegacyDefaults, error) {
	if path == "" {
		return &LegacyDefaults{}, nil
	}

	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &LegacyDefaults{}, nil
		}
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	return ParseLegacy(path, data)
}

// ParseLegacy parses legacy credential file content. path is only used in errors.
func ParseLegacy(path string, data []byte) (*LegacyDefaults, error) {
	var raw tugboatFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ImportError{Path: path, Err: err}
	}

	d := &LegacyDefaults{}
	if a := raw.Authentication; a != nil {
		d.ClientID = present(a.ClientKey)
		d.APIKey = present(a.APIKey)
	}
	if def := raw.Defaults; def != nil {
		d.RegionID = presentID(def.Region)
		d.ImageID = presentID(def.Image)
		d.SizeID = presentID(def.Size)
		d.PrivateNetworking = presentBool(def.PrivateNetworking)
		d.BackupsEnabled = presentBool(def.BackupsEnabled)
		d.KeyName = present(def.SSHKey)
	}
	if s := raw.SSH; s != nil {
		d.KeyPath = present(s.KeyPath)
		d.SSHPort = present(s.Port)
	}
	return d, nil
}

func present(s legacyString) *string {
	if s == "" {
		return nil
	}
	v := string(s)
	return &v
}

// presentID coerces numeric ids to their canonical integer text.
// Slugs such as "nyc1" are kept as they are.
func presentID(s legacyString) *string {
	v := present(s)
	if v == nil {
		return nil
	}
	if n, err := strconv.Atoi(strings.TrimSpace(*v)); err == nil {
		id := strconv.Itoa(n)
		return &id
	}
	return v
}

func presentBool(s legacyString) *bool {
	if s == "" {
		return nil
	}
	b := s == "true"
	return &b
}

// Layer projects the defaults into a configuration layer. Absent fields
// are not written, so the layer never masks a lower layer with empty values.
func (d *LegacyDefaults) Layer() Layer {
	l := Layer{}
	if d == nil {
		return l
	}
	compute := []string{KeyDriverOptions, KeyComputeOptions}
	bootstrap := []string{KeyMachineOptions, KeyBootstrapOptions}

	setString(l, d.ClientID, append(compute, KeyClientID)...)
	setString(l, d.APIKey, append(compute, KeyAPIKey)...)

	setString(l, d.RegionID, append(bootstrap, "region_id")...)
	setString(l, d.ImageID, append(bootstrap, "image_id")...)
	setString(l, d.SizeID, append(bootstrap, "size_id")...)
	if d.PrivateNetworking != nil {
		l.Set(*d.PrivateNetworking, append(bootstrap, "private_networking")...)
	}
	if d.BackupsEnabled != nil {
		l.Set(*d.BackupsEnabled, append(bootstrap, "backups_enabled")...)
	}
	setString(l, d.KeyName, append(bootstrap, "key_name")...)
	setString(l, d.KeyPath, append(bootstrap, "key_path")...)

	if d.SSHPort != nil {
		var port any = *d.SSHPort
		if n, err := strconv.Atoi(strings.TrimSpace(*d.SSHPort)); err == nil {
			port = n
		}
		l.Set(port, KeyMachineOptions, KeySSHOptions, "port")
	}
	return l
}

func setString(l Layer, v *string, path ...string) {
	if v != nil {
		l.Set(*v, path...)
	}
}
