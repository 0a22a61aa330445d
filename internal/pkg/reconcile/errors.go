package reconcile

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes of a reconciliation run.
var (
	ErrInvalidParameters  = errors.New("invalid parameters")
	ErrInterfaceNotFound  = errors.New("interface not found")
	ErrUnsupportedFeature = errors.New("unsupported feature")
)

// ParameterError reports a violated parameter constraint. It is raised before the backend is touched.
type ParameterError struct {
	Reason string
}

func (e *ParameterError) Error() string {
	return "invalid parameters: " + e.Reason
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameters
}

func newParameterError(format string, args ...interface{}) *ParameterError {
	return &ParameterError{Reason: fmt.Sprintf(format, args...)}
}

// InterfaceNotFoundError reports a target interface missing from the observed state.
type InterfaceNotFoundError struct {
	Name string
}

func (e *InterfaceNotFoundError) Error() string {
	return fmt.Sprintf("interface %q not found", e.Name)
}

func (e *InterfaceNotFoundError) Unwrap() error {
	return ErrInterfaceNotFound
}

// UnsupportedFeatureError reports a requested capability that is not implemented.
type UnsupportedFeatureError struct {
	Feature string
}

func (e *UnsupportedFeatureError) Error() string {
	return e.Feature + " not yet supported"
}

func (e *UnsupportedFeatureError) Unwrap() error {
	return ErrUnsupportedFeature
}
