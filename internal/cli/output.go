// Package cli hosts the drrc command-line frontend: cobra command wiring,
// JSON/text output formatting, and exit-code conventions for driving a
// rule set against a sample program.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes distinguish a command-usage error from a substantive failure of
// the thing being run.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // a rule set failed to reach a fixed point, etc.
	ExitCommandError = 2 // bad flags, unreadable file, malformed YAML
)

// ExitError carries the process exit code a command should terminate with.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError builds an ExitError with no wrapped cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError builds an ExitError wrapping an underlying cause.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts a process exit code from err, defaulting to
// ExitFailure for any error that isn't an *ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter renders command results as colorized text or as JSON.
type OutputFormatter struct {
	Format    string // "text" | "json"
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// Response is the JSON envelope every drrc command emits in --format=json.
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  *RespError  `json:"error,omitempty"`
}

// RespError is the error payload inside Response.
type RespError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success renders data as the formatter's configured format.
func (f *OutputFormatter) Success(text string, data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(Response{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, text)
	return nil
}

// Error renders a failure as the formatter's configured format.
func (f *OutputFormatter) Error(code, message string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(Response{Status: "error", Error: &RespError{Code: code, Message: message}})
	}
	fmt.Fprintf(f.Writer, "error [%s]: %s\n", code, message)
	return nil
}

// VerboseLog writes a diagnostic line only when Verbose is set, to ErrWriter
// so it never corrupts a JSON-format stdout stream.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
