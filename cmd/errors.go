package cmd

import (
	"errors"

	"github.com/odit-bit/openai-cli/api"
)

// ExitError ends the process with Code after printing Message as is.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// ValidationError rejects a request before it is sent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// runtimeError keeps handler failures apart from usage errors. Errors of
// unknown type become a plain failure.
func runtimeError(err error) error {
	if err == nil {
		return nil
	}
	var (
		apiErr   *api.Error
		exitErr  *ExitError
		validErr *ValidationError
	)
	if errors.As(err, &apiErr) || errors.As(err, &exitErr) || errors.As(err, &validErr) {
		return err
	}
	return &ExitError{Code: exitFailure, Message: "Error: " + err.Error()}
}
