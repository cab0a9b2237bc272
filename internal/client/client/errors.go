package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// Backend error codes the console reacts to or explains.
const (
	CodeNoAdmins           = "no_admins"
	CodeInvalidCredentials = "invalid_credentials"
	CodeMissingCredentials = "missing_credentials"
	CodeAlreadyInitialized = "already_initialized"
	CodeUsernameTaken      = "username_taken"
	CodeCannotDisableSelf  = "cannot_disable_self"
	CodeCannotDeleteSelf   = "cannot_delete_self"
	CodeNotFound           = "not_found"
	CodeMissingFields      = "missing_fields"
	CodeMissingPassword    = "missing_password"
	CodeBadJSON            = "bad_json"
)

var codeMessages = map[string]string{
	CodeNoAdmins:           "no administrators exist yet, create the first one with bootstrap",
	CodeInvalidCredentials: "invalid username or password",
	CodeMissingCredentials: "username and password are required",
	CodeAlreadyInitialized: "an administrator already exists, use login",
	CodeUsernameTaken:      "username is already taken",
	CodeCannotDisableSelf:  "you cannot disable your own account",
	CodeCannotDeleteSelf:   "you cannot delete your own account",
	CodeNotFound:           "account not found",
	CodeMissingFields:      "nothing to update",
	CodeMissingPassword:    "password must not be empty",
	CodeBadJSON:            "request body was rejected",
}

// AppError is a non-2xx, non-401 response. Code is the backend's machine
// code; when the body was not JSON, Code is empty and Snippet holds a short
// excerpt of the raw body instead.
type AppError struct {
	Status  int
	Code    string
	Snippet string
}

func (e *AppError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("request rejected (%d): %s", e.Status, e.Code)
	}
	return fmt.Sprintf("request rejected (%d): %s", e.Status, e.Snippet)
}

// Message is the operator-facing text for the error.
func (e *AppError) Message() string {
	if msg, ok := codeMessages[e.Code]; ok {
		return msg
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Snippet)
}

// IsCode reports whether err is an AppError carrying code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// NetworkError is a transport failure: no response was obtained. It matches
// ErrUnavailable as well as the underlying cause.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	return []error{ErrUnavailable, e.Err}
}

// Outcome is the four-way classification of a gateway call.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeUnauthorized
	OutcomeAppError
	OutcomeNetworkError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeUnauthorized:
		return "unauthorized"
	case OutcomeAppError:
		return "app_error"
	case OutcomeNetworkError:
		return "network_error"
	default:
		return "unknown"
	}
}

// OutcomeOf classifies an error returned by HTTPClient. Errors that did not
// come from the gateway (decode failures, local I/O) count as AppError so they
// still surface on the originating panel.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrUnauthorized):
		return OutcomeUnauthorized
	case errors.Is(err, ErrUnavailable):
		return OutcomeNetworkError
	default:
		return OutcomeAppError
	}
}

// Describe renders err for a panel's error slot. Unauthorized errors return
// "" because the forced logout already tells the operator what happened.
func Describe(err error) string {
	var appErr *AppError
	switch OutcomeOf(err) {
	case OutcomeOK, OutcomeUnauthorized:
		return ""
	case OutcomeNetworkError:
		return "network error, check connectivity: " + err.Error()
	default:
		if errors.As(err, &appErr) {
			return appErr.Message()
		}
		return err.Error()
	}
}
