package errs

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestWrap_PreservesCause(t *testing.T) {
	cause := os.ErrNotExist
	err := Wrap(cause, CodeReadFailed, "read legacy source")
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("cause lost through Wrap")
	}
	if !IsCode(err, CodeReadFailed) {
		t.Error("code lost through Wrap")
	}
	if IsCode(err, CodeBadSpec) {
		t.Error("wrong code matched")
	}
}

func TestIsCode_ThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeBadMapping, "bad table"))
	if !IsCode(err, CodeBadMapping) {
		t.Error("code not found through fmt wrapping")
	}
	if IsCode(errors.New("plain"), CodeBadMapping) {
		t.Error("plain error matched a code")
	}
}

func TestAddContext(t *testing.T) {
	err := AddContext(New(CodeReadFailed, "read"), CtxPath, "a.cpp")
	var pe *PipelineError
	if !errors.As(err, &pe) {
		t.Fatal("not a PipelineError")
	}
	if pe.Context[CtxPath] != "a.cpp" {
		t.Errorf("Context = %v", pe.Context)
	}

	// A foreign error gets wrapped rather than dropped.
	wrapped := AddContext(errors.New("boom"), CtxStage, "extract")
	if !IsCode(wrapped, CodeInternal) {
		t.Errorf("foreign error not wrapped: %v", wrapped)
	}
	if !strings.Contains(wrapped.Error(), "boom") {
		t.Errorf("cause text lost: %v", wrapped)
	}
}

func TestErrorString(t *testing.T) {
	err := Wrap(errors.New("no such file"), CodeReadFailed, "read legacy source")
	got := err.Error()
	for _, want := range []string{"READ_FAILED", "read legacy source", "no such file"} {
		if !strings.Contains(got, want) {
			t.Errorf("Error() = %q, missing %q", got, want)
		}
	}
}
