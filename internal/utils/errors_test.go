package utils

import (
	"errors"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	err := NewAppError("Analyze", "trace exceeds limit", nil)
	if err.Error() != "Analyze: trace exceeds limit" {
		t.Fatalf("got %q", err.Error())
	}
}

func TestAppErrorWrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := NewAppError("SaveReport", "persist report", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("cause not reachable through Unwrap")
	}
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Op != "SaveReport" {
		t.Fatalf("got %+v", appErr)
	}
}
