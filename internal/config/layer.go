package config

import (
	"fmt"
	"strings"
)

// Well-known key paths inside a configuration layer.
const (
	KeyDriverOptions    = "driver_options"
	KeyComputeOptions   = "compute_options"
	KeyKeysDir          = "keys_dir"
	KeyMachineOptions   = "machine_options"
	KeyBootstrapOptions = "bootstrap_options"
	KeySSHOptions       = "ssh_options"

	KeyProvider = "provider"
	KeyClientID = "digitalocean_client_id"
	KeyAPIKey   = "digitalocean_api_key"
	KeyToken    = "digitalocean_token"
)

// Layer is one level of configuration: a tree of string-keyed maps.
// A key that is missing, or whose value is nil, is absent.
type Layer map[string]any

// NormalizeKey returns the canonical form of an option name.
// ":Image-ID" and "image_id" name the same option.
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	key = strings.TrimPrefix(key, ":")
	key = strings.ReplaceAll(key, "-", "_")
	return strings.ToLower(key)
}

// NormalizeLayer returns a deep copy of m with every map key normalized.
func NormalizeLayer(m map[string]any) Layer {
	out := make(Layer, len(m))
	for k, v := range m {
		out[NormalizeKey(k)] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case Layer:
		return NormalizeLayer(val)
	case map[string]any:
		return map[string]any(NormalizeLayer(val))
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[NormalizeKey(fmt.Sprint(k))] = normalizeValue(item)
		}
		return m
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}

// Clone returns a deep copy of the layer.
func (l Layer) Clone() Layer {
	if l == nil {
		return Layer{}
	}
	return cloneMap(l)
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case Layer:
		return Layer(cloneMap(val))
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return v
	}
}

// Get returns the value at path and whether it is present.
func (l Layer) Get(path ...string) (any, bool) {
	var cur any = map[string]any(l)
	for _, key := range path {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// GetString returns the string at path, or "" when absent or not a string.
func (l Layer) GetString(path ...string) string {
	v, ok := l.Get(path...)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Set stores value at path, creating intermediate maps.
// A non-map value sitting on the path is replaced.
func (l Layer) Set(value any, path ...string) {
	if len(path) == 0 {
		return
	}
	cur := map[string]any(l)
	for _, key := range path[:len(path)-1] {
		next, ok := asMap(cur[key])
		if !ok {
			next = map[string]any{}
			cur[key] = next
		}
		cur = next
	}
	cur[path[len(path)-1]] = value
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case Layer:
		return m, true
	case map[string]any:
		return m, true
	default:
		return nil, false
	}
}

// MergeLayers merges three layers with explicit > legacy > defaults precedence.
// For every key path the first defined value wins; maps present in several
// layers are merged key by key. The inputs are not modified.
//
// The second return value is the resolved credential id
// (driver_options.compute_options.digitalocean_client_id), which callers use
// as a cache key for the driver configuration.
func MergeLayers(explicit, legacy, defaults Layer) (Layer, string) {
	merged := Layer{}
	for _, layer := range []Layer{explicit, legacy, defaults} {
		fillMissing(merged, layer)
	}
	return merged, merged.GetString(KeyDriverOptions, KeyComputeOptions, KeyClientID)
}

// fillMissing copies every key path of src that dst does not define yet.
func fillMissing(dst, src map[string]any) {
	for k, v := range src {
		if v == nil {
			continue
		}
		existing, ok := dst[k]
		if !ok || existing == nil {
			dst[k] = cloneValue(v)
			continue
		}
		dstMap, dstIsMap := asMap(existing)
		srcMap, srcIsMap := asMap(v)
		if dstIsMap && srcIsMap {
			fillMissing(dstMap, srcMap)
		}
	}
}
