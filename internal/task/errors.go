package task

import (
	"errors"
	"fmt"
)

// Sentinel kinds for everything the manager can raise. Callers branch with
// errors.Is; the wrapping Error carries the display strings.
var (
	ErrEmptyTitle   = errors.New("task title is empty")
	ErrInvalidData  = errors.New("invalid task data")
	ErrTaskNotFound = errors.New("task not found")
	ErrSaveFailed   = errors.New("saving tasks failed")
	ErrLoadFailed   = errors.New("loading tasks failed")
)

// Error pairs a sentinel kind with a user-facing message and a recovery
// suggestion. Message and Suggestion are for display only; programmatic
// handling goes through the Kind sentinels.
type Error struct {
	Kind       error
	Message    string
	Suggestion string
	Cause      error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

func emptyTitleError() *Error {
	return &Error{
		Kind:       ErrEmptyTitle,
		Message:    "Task title cannot be empty",
		Suggestion: "Enter a title and try again",
	}
}

func invalidDataError(msg string) *Error {
	return &Error{
		Kind:       ErrInvalidData,
		Message:    msg,
		Suggestion: "Check the task fields and try again",
	}
}

func taskNotFoundError(id string) *Error {
	return &Error{
		Kind:       ErrTaskNotFound,
		Message:    fmt.Sprintf("No task with id %s", id),
		Suggestion: "Refresh the list; the task may have been deleted",
	}
}

func saveFailedError(cause error) *Error {
	return &Error{
		Kind:       ErrSaveFailed,
		Message:    "Could not save your tasks",
		Suggestion: "Changes are kept in memory; check disk space and try again",
		Cause:      cause,
	}
}

func loadFailedError(cause error) *Error {
	return &Error{
		Kind:       ErrLoadFailed,
		Message:    "Could not load saved tasks",
		Suggestion: "Starting with sample tasks instead",
		Cause:      cause,
	}
}
