package usage

import "errors"

// Client-facing validation messages.
const (
	MsgMissingFields        = "Missing required fields"
	MsgInvalidNudgeResponse = "Invalid nudge response"
	MsgInvalidTheme         = "Invalid theme"
	MsgInvalidPlan          = "Invalid plan"
)

// ValidationError reports input that cannot be recorded. Its message is
// safe to return to clients.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}

// IsValidation reports whether err is a ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
