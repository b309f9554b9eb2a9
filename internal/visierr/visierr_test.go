package visierr

import (
	"errors"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	err := New(InvalidArgument, "bad partition %d", 7)
	want := "InvalidArgument: bad partition 7"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapIncludesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(MalformedInput, cause, "reading element %d", 3)

	want := "MalformedInput: reading element 3: disk full"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected errors.Is to find the wrapped cause")
	}
}

func TestIs(t *testing.T) {
	err := New(GeometryDegenerate, "zero-length portal")
	if !Is(err, GeometryDegenerate) {
		t.Errorf("expected Is(err, GeometryDegenerate) to be true")
	}
	if Is(err, PreconditionViolation) {
		t.Errorf("expected Is(err, PreconditionViolation) to be false")
	}
	if Is(errors.New("plain error"), GeometryDegenerate) {
		t.Errorf("expected Is to be false for a non-*Error")
	}
}

func TestKindString(t *testing.T) {
	tests := map[Kind]string{
		InvalidArgument:       "InvalidArgument",
		PreconditionViolation: "PreconditionViolation",
		MalformedInput:        "MalformedInput",
		GeometryDegenerate:    "GeometryDegenerate",
		Kind(99):              "Unknown",
	}
	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
