package lod

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is matched by every *ConfigurationError.
	ErrInvalidConfiguration = errors.New("lod: invalid configuration")
	// ErrDuplicateObject is returned when an object id is already registered.
	ErrDuplicateObject = errors.New("lod: object already registered")
	// ErrUnknownObject is returned for ids that are not registered.
	ErrUnknownObject = errors.New("lod: unknown object")
)

// ConfigurationError reports an invalid registration. The failing call leaves
// previously registered objects untouched.
type ConfigurationError struct {
	ObjectID string
	Field    string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	if e.ObjectID == "" {
		return fmt.Sprintf("lod: invalid configuration: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("lod: invalid configuration for %q: %s %s", e.ObjectID, e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidConfiguration) true.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

func invalid(id, field, reason string) error {
	return &ConfigurationError{ObjectID: id, Field: field, Reason: reason}
}
