package advisor

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrRosterUnavailable indicates the roster source is absent. Callers
	// receive an empty roster alongside it and may continue.
	ErrRosterUnavailable = errors.New("roster unavailable")

	// ErrInvalidStudentID indicates a submitted identifier is not numeric.
	ErrInvalidStudentID = errors.New("invalid student ID")

	// ErrStudentNotFound indicates a well-formed identifier has no roster match.
	ErrStudentNotFound = errors.New("student not found")

	// ErrAlreadyAuthenticated indicates a login on a signed-in session.
	ErrAlreadyAuthenticated = errors.New("already authenticated")

	// ErrNotAuthenticated indicates a turn was attempted on a signed-out session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrEmptyQuestion indicates the submitted utterance was blank.
	ErrEmptyQuestion = errors.New("empty question")

	// ErrEmptyAnswer indicates the service returned no answer text.
	ErrEmptyAnswer = errors.New("empty answer")

	// ErrTurnInProgress indicates a session is still processing a turn.
	ErrTurnInProgress = errors.New("turn in progress")

	// ErrSessionNotFound indicates an unknown or expired session.
	ErrSessionNotFound = errors.New("session not found")
)

// GenerationError wraps a failure from the generation service. The
// transcript keeps the user's message and records no assistant reply.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return "generation failed: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// UserMessage returns the text shown to the user in place of an answer.
func (e *GenerationError) UserMessage() string {
	return "Error: " + e.Err.Error()
}
