package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/tally/internal/logger"
)

var (
	// ErrMalformedTimestamp marks a raw event whose timestamp could not be parsed.
	// The event is skipped and processing continues.
	ErrMalformedTimestamp = stderrors.New("malformed timestamp")
	// ErrNonPositiveDuration marks a raw event with a zero or negative duration.
	ErrNonPositiveDuration = stderrors.New("non-positive duration")
	// ErrDurationTooLong marks a raw event longer than one week.
	ErrDurationTooLong = stderrors.New("duration too long")
	// ErrInvalidSettings is returned when a settings snapshot fails validation.
	ErrInvalidSettings = stderrors.New("invalid settings")
	// ErrUnknownStrategy is returned for an overlap strategy outside the supported set.
	ErrUnknownStrategy = stderrors.New("unknown overlap strategy")
)

// UnknownSourceError aborts a processing run: every block needs a priority.
type UnknownSourceError struct {
	Source string
}

func (e *UnknownSourceError) Error() string {
	return fmt.Sprintf("unknown source: %q", e.Source)
}

// PipelineError records which processing stage failed.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// IsUnknownSource reports whether err wraps an UnknownSourceError
func IsUnknownSource(err error) bool {
	var target *UnknownSourceError
	return stderrors.As(err, &target)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
