// Package naming provides the names and action descriptions used for
// DigitalOcean resources.
//
// Descriptions are what the action handler records, so they name the
// resource, its provider id and the driver it was reached through.
package naming
