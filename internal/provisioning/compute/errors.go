package compute

import (
	"errors"
	"fmt"
	"strings"
)

// Lookup failure kinds. A *LookupError matches exactly one of them with errors.Is.
var (
	ErrNoMatchingDistribution = errors.New("no images with matching distribution")
	ErrNoMatchingImage        = errors.New("no matching image")
	ErrNoMatchingFlavor       = errors.New("no matching flavor")
	ErrNoMatchingRegion       = errors.New("no matching region")
	ErrNoMatchingKey          = errors.New("no matching key")
)

// ErrNameConflict is returned in strict name mode when the bootstrap
// options carry a name other than the machine's.
var ErrNameConflict = errors.New("bootstrap option name differs from machine name")

// maxCandidates caps how many available names an error message lists.
const maxCandidates = 10

// LookupError reports a symbolic catalog lookup that matched nothing.
type LookupError struct {
	Kind  error  // one of the ErrNoMatching sentinels
	Field string // option that was looked up, e.g. "flavor_name"
	Value string
	// Scope narrows the search, e.g. `distribution "CentOS"` for image names.
	Scope    string
	Provider string // driver URL
	// Candidates are the values the catalog did offer.
	Candidates []string
}

func (e *LookupError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v: %s %q", e.Kind, e.Field, e.Value)
	if e.Scope != "" {
		fmt.Fprintf(&b, " with %s", e.Scope)
	}
	fmt.Fprintf(&b, " on %s", e.Provider)
	if len(e.Candidates) > 0 {
		shown := e.Candidates
		if len(shown) > maxCandidates {
			shown = shown[:maxCandidates]
		}
		fmt.Fprintf(&b, " (available: %s", strings.Join(shown, ", "))
		if more := len(e.Candidates) - len(shown); more > 0 {
			fmt.Fprintf(&b, " and %d more", more)
		}
		b.WriteString(")")
	}
	return b.String()
}

func (e *LookupError) Unwrap() error {
	return e.Kind
}
