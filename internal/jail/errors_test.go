package jail

import (
	"errors"
	"testing"
)

func TestWrapErrNil(t *testing.T) {
	if err := wrapErr(KindSyscall, nil); err != nil {
		t.Errorf("wrapErr(_, nil) = %v, want nil", err)
	}
}

func TestWrapErrUnwraps(t *testing.T) {
	inner := errors.New("boom")
	err := wrapErr(KindExec, inner)

	var je *Error
	if !errors.As(err, &je) {
		t.Fatalf("wrapErr result does not unwrap to *Error")
	}
	if je.Kind != KindExec {
		t.Errorf("je.Kind = %v, want %v", je.Kind, KindExec)
	}
	if !errors.Is(err, inner) {
		t.Errorf("wrapErr result does not wrap the original error")
	}
}
