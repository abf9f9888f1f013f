package pipeline

import (
	"errors"
	"fmt"

	"dubber/internal/services"
)

// StageError reports the stage that halted a run. It unwraps to the adapter
// error, so services markers remain visible to errors.Is.
type StageError struct {
	SessionID string
	Stage     string
	Message   string
	Err       error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func newStageError(sessionID, stage, message string, err error) *StageError {
	if err == nil {
		err = errors.New("stage produced no result")
	}
	if !hasMarker(err) {
		err = services.Wrap(services.ErrExternalTool, stage, "", "", err)
	}
	return &StageError{SessionID: sessionID, Stage: stage, Message: message, Err: err}
}

func hasMarker(err error) bool {
	for _, marker := range []error{
		services.ErrExternalTool,
		services.ErrValidation,
		services.ErrConfiguration,
		services.ErrNotFound,
		services.ErrTimeout,
		services.ErrTransient,
	} {
		if errors.Is(err, marker) {
			return true
		}
	}
	return false
}
