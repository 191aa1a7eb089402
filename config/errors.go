package config

import (
	"fmt"
	"strings"
)

// MissingKeyError is returned when a required key is absent from a configuration document.
type MissingKeyError struct {
	Path      string
	Namespace []string
	Key       string
}

// NewMissingKeyError returns an error describing a missing key.
func NewMissingKeyError(path string, namespace []string, key string) *MissingKeyError {
	return &MissingKeyError{Path: path, Namespace: append([]string(nil), namespace...), Key: key}
}

// FullKey returns the dotted path of the key.
func (e *MissingKeyError) FullKey() string {
	return joinKey(e.Namespace, e.Key)
}

func joinKey(namespace []string, key string) string {
	return strings.Join(append(append([]string(nil), namespace...), key), ".")
}

func (e *MissingKeyError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("missing required key %q", e.FullKey())
	}
	return fmt.Sprintf("missing required key %q in %s", e.FullKey(), e.Path)
}
