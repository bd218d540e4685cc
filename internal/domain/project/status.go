package project

import (
	"errors"

	"github.com/rpggio/genai-tracker/internal/generate"
)

// StatusKind classifies a user-facing status message.
type StatusKind string

const (
	StatusInfo    StatusKind = "info"
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// Status is a user-facing message describing an operation outcome.
type Status struct {
	Kind    StatusKind `json:"kind"`
	Message string     `json:"message"`
}

// Success returns a success status.
func Success(msg string) Status {
	return Status{Kind: StatusSuccess, Message: msg}
}

// Info returns an informational status.
func Info(msg string) Status {
	return Status{Kind: StatusInfo, Message: msg}
}

// StatusFor converts an operation error into a user-facing status.
func StatusFor(err error) Status {
	if err == nil {
		return Success("Done.")
	}

	var genErr *GenerationError
	var apiErr *generate.APIError
	var remote *RemoteError
	switch {
	case errors.As(err, &remote) && remote.Message != "":
		return errorStatus(remote.Message)
	case errors.Is(err, ErrInvalidPlan), errors.Is(err, generate.ErrPlanTooShort):
		return errorStatus("Please provide at least a few sentences describing your project.")
	case errors.Is(err, ErrInvalidName):
		return errorStatus("Please enter a project name.")
	case errors.Is(err, ErrEmptyItemText):
		return errorStatus("Please enter the item text.")
	case errors.Is(err, ErrEmptyMessage):
		return errorStatus("Please enter a change message.")
	case errors.Is(err, ErrNoCurrentProject):
		return errorStatus("No active project. Create or select a project first.")
	case errors.Is(err, ErrProjectNotFound):
		return errorStatus("Project not found.")
	case errors.Is(err, ErrItemNotFound):
		return errorStatus("Checklist item not found.")
	case errors.Is(err, ErrInvalidImport):
		return errorStatus("Could not read the project file.")
	case errors.As(err, &apiErr):
		return errorStatus("Error: " + apiErr.Error())
	case errors.As(err, &genErr):
		return errorStatus("Error: " + genErr.Err.Error())
	default:
		return errorStatus("Error: " + err.Error())
	}
}

func errorStatus(msg string) Status {
	return Status{Kind: StatusError, Message: msg}
}
