package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestAppErrorMatching(t *testing.T) {
	cause := stderrors.New("deadlock detected")
	wrapped := Wrap(ErrConcurrencyConflict, cause)

	t.Run("wrapped copy matches its sentinel", func(t *testing.T) {
		if !stderrors.Is(wrapped, ErrConcurrencyConflict) {
			t.Error("expected wrapped error to match ErrConcurrencyConflict")
		}
		if stderrors.Is(wrapped, ErrInvalidRelationship) {
			t.Error("did not expect a match with a different code")
		}
	})

	t.Run("internal cause stays reachable", func(t *testing.T) {
		if !stderrors.Is(wrapped, cause) {
			t.Error("expected the cause to be reachable through Unwrap")
		}
	})

	t.Run("matches through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("apply: %w", WithMessage(ErrInvalidRelationship, "tag belongs to another team"))
		if !stderrors.Is(err, ErrInvalidRelationship) {
			t.Error("expected match through fmt.Errorf")
		}
		var appErr *AppError
		if !stderrors.As(err, &appErr) || appErr.Message != "tag belongs to another team" {
			t.Errorf("unexpected AppError %+v", appErr)
		}
	})
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		err  *AppError
		want bool
	}{
		{ErrConcurrencyConflict, true},
		{Wrap(ErrConcurrencyConflict, stderrors.New("40001")), true},
		{ErrInvalidRelationship, false},
		{ErrInternalServer, false},
	}

	for _, tc := range cases {
		t.Run(tc.err.Code, func(t *testing.T) {
			if got := tc.err.Retryable(); got != tc.want {
				t.Errorf("Retryable() = %v, want %v", got, tc.want)
			}
		})
	}
}
