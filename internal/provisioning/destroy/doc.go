// Package destroy tears machines down.
//
// Destroy is idempotent: a machine without a recorded server, whose droplet
// is gone, or whose droplet is already archived needs no remote call. In
// every case the machine's location is cleared and its convergence
// bookkeeping is removed.
package destroy
