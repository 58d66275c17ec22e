// Package provisioning provides the shared types used by the machine
// lifecycle operations.
//
// # Subpackages
//
//   - compute/: bootstrap option resolution and droplet allocation
//   - keys/: SSH key reconciliation and the shared default key
//   - destroy/: idempotent machine teardown
//
// # Core Types
//
// Context carries the resolved configuration, the provider client, the
// action handler, the observer and the metrics recorder for one operation.
// MachineSpec identifies a machine and records where it lives.
// ActionHandler wraps every remote mutation so it can be recorded,
// reported and skipped in dry-run mode.
package provisioning
