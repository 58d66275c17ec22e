// Package config resolves the driver configuration from three layers.
//
// An explicit layer (the user's driver and machine options), a layer derived
// from the legacy tugboat credential file, and built-in defaults are merged
// per key path with explicit > legacy > defaults precedence. The merged
// [Layer] tree is decoded into the typed [Config] and validated.
//
// Layers are plain string-keyed maps so that any key the user sets, even one
// this package does not model, survives the merge untouched.
package config
