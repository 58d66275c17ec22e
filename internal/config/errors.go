package config

import (
	"errors"
	"fmt"
)

// ErrMalformedCredentialFile reports a legacy credential file that exists
// but does not have the expected structure.
var ErrMalformedCredentialFile = errors.New("malformed credential file")

// ImportError is returned when the legacy credential file cannot be parsed.
type ImportError struct {
	Path string
	Err  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrMalformedCredentialFile, e.Path, e.Err)
}

// Unwrap exposes both the classification and the parser error.
func (e *ImportError) Unwrap() []error {
	return []error{ErrMalformedCredentialFile, e.Err}
}
