package provisioning

import (
	"time"

	"github.com/imamik/dodriver/internal/config"
)

// MachineSpec identifies a logical machine.
type MachineSpec struct {
	// Name is stable for the life of the machine.
	Name string `json:"name" yaml:"name"`
	// ID is the framework's id for the machine. It ends up in the default tags.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`
	// Location is nil while no server is allocated.
	Location *Location `json:"location,omitempty" yaml:"location,omitempty"`
}

// Location records where a machine's server lives.
type Location struct {
	DriverURL     string    `json:"driver_url" yaml:"driver_url"`
	DriverVersion string    `json:"driver_version" yaml:"driver_version"`
	ServerID      string    `json:"server_id" yaml:"server_id"`
	Creator       string    `json:"creator" yaml:"creator"`
	AllocatedAt   time.Time `json:"allocated_at" yaml:"allocated_at"`
}

// ServerID returns the recorded server id, or "" when nothing is allocated.
func (s *MachineSpec) ServerID() string {
	if s == nil || s.Location == nil {
		return ""
	}
	return s.Location.ServerID
}

// MachineOptions are the per-call options of a lifecycle operation.
type MachineOptions struct {
	Bootstrap config.BootstrapOptions
	SSH       config.SSHOptions
	// Convergence is cleaned up after destroy. Nil selects the driver default.
	Convergence ConvergenceStrategy
}
