package feedback

import (
	"fmt"

	"tccretro/internal/services"
)

// AuthError reports absent or rejected credentials.
type AuthError struct {
	Provider string
	Err      error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("feedback %s: credentials unavailable", e.Provider)
	}
	return fmt.Sprintf("feedback %s: credentials unavailable: %v", e.Provider, e.Err)
}

func (e *AuthError) Unwrap() []error { return unwrapWith(services.ErrAuth, e.Err) }

// ServiceError reports a failed or timed-out remote call.
type ServiceError struct {
	Provider   string
	StatusCode int
	Timeout    bool
	Err        error
}

func (e *ServiceError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("feedback %s: request timed out: %v", e.Provider, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("feedback %s: service returned status %d: %v", e.Provider, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("feedback %s: service call failed: %v", e.Provider, e.Err)
	}
}

func (e *ServiceError) Unwrap() []error {
	if e.Timeout {
		return unwrapWith(services.ErrTimeout, e.Err)
	}
	return unwrapWith(services.ErrService, e.Err)
}

// EmptyResponseError reports a successful call that carried no usable text.
type EmptyResponseError struct {
	Provider string
	Detail   string
}

func (e *EmptyResponseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("feedback %s: empty response", e.Provider)
	}
	return fmt.Sprintf("feedback %s: empty response: %s", e.Provider, e.Detail)
}

func (e *EmptyResponseError) Unwrap() error { return services.ErrEmptyResponse }

func unwrapWith(marker, cause error) []error {
	if cause == nil {
		return []error{marker}
	}
	return []error{marker, cause}
}
