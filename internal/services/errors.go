package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAnalysis      = errors.New("analysis error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrAuth          = errors.New("authentication error")
	ErrService       = errors.New("service error")
	ErrTimeout       = errors.New("timeout")
	ErrEmptyResponse = errors.New("empty response")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrService
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Reason returns a short, user-facing classification of err suitable for
// report markers ("authentication error", "timeout", ...).
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return ErrTimeout.Error()
	case errors.Is(err, ErrAuth):
		return ErrAuth.Error()
	case errors.Is(err, ErrEmptyResponse):
		return ErrEmptyResponse.Error()
	case errors.Is(err, ErrConfiguration):
		return ErrConfiguration.Error()
	case errors.Is(err, ErrValidation):
		return ErrValidation.Error()
	case errors.Is(err, ErrAnalysis):
		return ErrAnalysis.Error()
	case errors.Is(err, ErrService):
		return ErrService.Error()
	default:
		return strings.TrimSpace(err.Error())
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
