package session

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthRequired is matched by every *AuthRequiredError.
	ErrAuthRequired = errors.New("authentication required")

	// ErrNoArtifact indicates Download was called before a successful submit.
	ErrNoArtifact = errors.New("no processed file to download")

	// ErrNothingToSubmit indicates Submit was called without a validated file.
	ErrNothingToSubmit = errors.New("nothing to submit")

	// ErrAlreadyProcessing indicates Submit was called while an upload is in flight.
	ErrAlreadyProcessing = errors.New("already processing")

	// ErrResetWhileProcessing indicates Reset was refused because an upload
	// cannot be cancelled.
	ErrResetWhileProcessing = errors.New("cannot reset while processing")

	// ErrInvalidTransition indicates an operation is not allowed in the
	// current state.
	ErrInvalidTransition = errors.New("invalid session transition")
)

// AuthRequiredError reports an action attempted while logged out.
type AuthRequiredError struct {
	Action string
}

func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf("%s: %s", e.Action, ErrAuthRequired)
}

func (e *AuthRequiredError) Is(target error) bool {
	return target == ErrAuthRequired
}

// IsWarning reports whether err is a refused no-op rather than a failure.
func IsWarning(err error) bool {
	return errors.Is(err, ErrNothingToSubmit) ||
		errors.Is(err, ErrAlreadyProcessing) ||
		errors.Is(err, ErrResetWhileProcessing) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrNoArtifact)
}
