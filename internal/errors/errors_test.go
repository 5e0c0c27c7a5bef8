package errors

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      errors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "unknown source",
			err:      &UnknownSourceError{Source: "jira"},
			expected: `Error: unknown source: "jira"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("failed to load %s", "settings")
	if got != "Error: failed to load settings" {
		t.Errorf("Formatf() = %q", got)
	}
}

func TestPipelineErrorUnwrap(t *testing.T) {
	inner := &UnknownSourceError{Source: "jira"}
	err := fmt.Errorf("run aborted: %w", &PipelineError{Stage: "normalize", Err: inner})

	if !IsUnknownSource(err) {
		t.Error("IsUnknownSource() = false, want true through PipelineError")
	}

	var pe *PipelineError
	if !errors.As(err, &pe) {
		t.Fatal("errors.As() did not find PipelineError")
	}
	if pe.Stage != "normalize" {
		t.Errorf("Stage = %q, want %q", pe.Stage, "normalize")
	}
	if !strings.Contains(pe.Error(), "normalize: unknown source") {
		t.Errorf("Error() = %q", pe.Error())
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	wrapped := fmt.Errorf("event wakatime/1: %w", ErrMalformedTimestamp)
	if !errors.Is(wrapped, ErrMalformedTimestamp) {
		t.Error("wrapped error should match ErrMalformedTimestamp")
	}
	if errors.Is(wrapped, ErrNonPositiveDuration) {
		t.Error("wrapped error should not match ErrNonPositiveDuration")
	}
	if IsUnknownSource(wrapped) {
		t.Error("IsUnknownSource() = true for a timestamp error")
	}
}

// TestFatal tests the Fatal function using exec helper process
func TestFatal(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL") == "1" {
		Fatal(errors.New("test error"))
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal$")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if e, ok := err.(*exec.ExitError); ok && !e.Success() {
		if e.ExitCode() != 1 {
			t.Errorf("Fatal() exit code = %d, want 1", e.ExitCode())
		}
		if !strings.Contains(stderr.String(), "Error: test error") {
			t.Errorf("Fatal() stderr = %q, want to contain %q", stderr.String(), "Error: test error")
		}
	} else {
		t.Errorf("Fatal() did not exit with error: %v", err)
	}
}

// TestFatal_NilError tests that Fatal does nothing when passed a nil error
func TestFatal_NilError(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL_NIL") == "1" {
		Fatal(nil)
		os.Exit(0)
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal_NilError")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL_NIL=1")

	if err := cmd.Run(); err != nil {
		t.Errorf("Fatal(nil) should not exit, but got error: %v", err)
	}
}
