package lasca

import (
	"errors"
	"strings"
	"testing"
)

func TestAllocationError(t *testing.T) {
	inner := errors.New("out of device memory")
	var err error = &AllocationError{Resource: "mask", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("AllocationError should unwrap to its cause")
	}
	var ae *AllocationError
	if !errors.As(err, &ae) || ae.Resource != "mask" {
		t.Errorf("errors.As failed: %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "mask") || !strings.Contains(got, "out of device memory") {
		t.Errorf("Error() = %q", got)
	}
}

func TestDispatchError(t *testing.T) {
	err := error(&DispatchError{Stage: "spatial", Err: ErrClosed})
	if !errors.Is(err, ErrClosed) {
		t.Error("DispatchError should unwrap to its cause")
	}
	if got := err.Error(); got != "lasca: spatial stage: lasca: closed" {
		t.Errorf("Error() = %q", got)
	}
}
