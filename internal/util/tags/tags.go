package tags

import (
	"os"
	"os/user"
	"sort"
	"strings"
)

// Default tag keys.
const (
	KeyName          = "Name"
	KeyBootstrapID   = "BootstrapId"
	KeyBootstrapHost = "BootstrapHost"
	KeyBootstrapUser = "BootstrapUser"
)

// TagBuilder provides a fluent interface for building droplet tags.
type TagBuilder struct {
	tags map[string]string
}

// NewTagBuilder creates a builder with the machine name pre-set.
func NewTagBuilder(machineName string) *TagBuilder {
	return &TagBuilder{
		tags: map[string]string{
			KeyName: machineName,
		},
	}
}

// WithBootstrapID records the framework id of the machine. Empty ids are skipped.
func (tb *TagBuilder) WithBootstrapID(id string) *TagBuilder {
	if id != "" {
		tb.tags[KeyBootstrapID] = id
	}
	return tb
}

// WithBootstrapHost records the host the machine was created from.
func (tb *TagBuilder) WithBootstrapHost(host string) *TagBuilder {
	if host != "" {
		tb.tags[KeyBootstrapHost] = host
	}
	return tb
}

// WithBootstrapUser records the local user that created the machine.
func (tb *TagBuilder) WithBootstrapUser(u string) *TagBuilder {
	if u != "" {
		tb.tags[KeyBootstrapUser] = u
	}
	return tb
}

// Merge adds all tags from extra, overriding existing keys.
func (tb *TagBuilder) Merge(extra map[string]string) *TagBuilder {
	for k, v := range extra {
		tb.tags[k] = v
	}
	return tb
}

// Build returns a copy of the tags map.
func (tb *TagBuilder) Build() map[string]string {
	result := make(map[string]string, len(tb.tags))
	for k, v := range tb.tags {
		result[k] = v
	}
	return result
}

// Default returns the default tags for a machine bootstrapped from host by user.
func Default(machineName, machineID, host, username string) map[string]string {
	return NewTagBuilder(machineName).
		WithBootstrapID(machineID).
		WithBootstrapHost(host).
		WithBootstrapUser(username).
		Build()
}

// Local returns the hostname and login name of the current process.
// Lookups that fail yield empty strings.
func Local() (host, username string) {
	host, _ = os.Hostname()
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	if username == "" {
		username = os.Getenv("USER")
	}
	return host, username
}

// Format renders tags as sorted "key:value" strings. DigitalOcean tags only
// allow letters, digits, colons, dashes and underscores; anything else
// becomes an underscore.
func Format(tags map[string]string) []string {
	out := make([]string, 0, len(tags))
	for k, v := range tags {
		if v == "" {
			out = append(out, sanitize(k))
			continue
		}
		out = append(out, sanitize(k)+":"+sanitize(v))
	}
	sort.Strings(out)
	return out
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ':', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
