package report

import (
	"errors"
	"fmt"

	"tccretro/internal/services"
)

// State is the compositor lifecycle position.
type State int

const (
	StateEmpty State = iota
	StateAnalyzersApplied
	StateFeedbackApplied
	StateFeedbackSkipped
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateAnalyzersApplied:
		return "analyzers_applied"
	case StateFeedbackApplied:
		return "feedback_applied"
	case StateFeedbackSkipped:
		return "feedback_skipped"
	case StateFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrInvalidTransition is returned when a compositor operation is called out
// of order.
var ErrInvalidTransition = errors.New("invalid report transition")

// ErrEmptyFeedback is returned by ApplyFeedback for blank text. It matches
// services.ErrEmptyResponse so callers can degrade through FeedbackFailed.
var ErrEmptyFeedback = fmt.Errorf("%w: report: feedback text is empty", services.ErrEmptyResponse)

func transitionError(op string, from State) error {
	return fmt.Errorf("%w: %s not allowed in state %s", ErrInvalidTransition, op, from)
}
