package project

import (
	"errors"
)

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrNoCurrentProject indicates an operation needed a current project.
	ErrNoCurrentProject = errors.New("no current project")
	// ErrItemNotFound indicates the checklist item doesn't exist.
	ErrItemNotFound = errors.New("checklist item not found")
	// ErrInvalidName indicates an empty project name.
	ErrInvalidName = errors.New("project name is required")
	// ErrEmptyItemText indicates an empty custom item text.
	ErrEmptyItemText = errors.New("item text is required")
	// ErrEmptyMessage indicates an empty change message.
	ErrEmptyMessage = errors.New("change message is required")
	// ErrInvalidPlan indicates the research plan is too short to generate from.
	ErrInvalidPlan = errors.New("research plan too short")
	// ErrGenerationFailed indicates checklist generation did not produce a result.
	ErrGenerationFailed = errors.New("checklist generation failed")
	// ErrStaleUpdate indicates an incoming snapshot is not newer than local state.
	ErrStaleUpdate = errors.New("update older than local state")
	// ErrInvalidImport indicates an unreadable project export.
	ErrInvalidImport = errors.New("invalid project export")
)

// GenerationError wraps the cause of a failed generation.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return ErrGenerationFailed.Error() + ": " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Is reports ErrGenerationFailed as a match.
func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }

var errorCodes = []struct {
	code string
	err  error
}{
	{"PROJECT_NOT_FOUND", ErrProjectNotFound},
	{"NO_CURRENT_PROJECT", ErrNoCurrentProject},
	{"ITEM_NOT_FOUND", ErrItemNotFound},
	{"INVALID_NAME", ErrInvalidName},
	{"EMPTY_ITEM_TEXT", ErrEmptyItemText},
	{"EMPTY_MESSAGE", ErrEmptyMessage},
	{"INVALID_PLAN", ErrInvalidPlan},
	{"GENERATION_FAILED", ErrGenerationFailed},
	{"STALE_UPDATE", ErrStaleUpdate},
	{"INVALID_IMPORT", ErrInvalidImport},
}

// ErrorCode returns the wire code for a store error, or "" for errors the
// store does not define.
func ErrorCode(err error) string {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

// ErrorForCode returns the store error a wire code stands for, or nil.
func ErrorForCode(code string) error {
	for _, c := range errorCodes {
		if c.code == code {
			return c.err
		}
	}
	return nil
}

// RemoteError is a store error reported by a tracker server. Message is the
// server's user-facing status text; Err is the matching store error when the
// code is known.
type RemoteError struct {
	StatusCode int
	Code       string
	Message    string
	Details    string
	Err        error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Details != "":
		return e.Details
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Message
	}
}

func (e *RemoteError) Unwrap() error { return e.Err }
