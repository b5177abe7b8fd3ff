package testutil

import (
	"errors"
	"testing"

	apperrors "ledgerly/internal/errors"

	"gorm.io/gorm"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertBalance reads the balance column of the row id in table, including
// soft-deleted rows, and compares it with want.
func AssertBalance(t *testing.T, db *gorm.DB, table, id string, want int64) {
	t.Helper()

	var row struct{ Balance int64 }
	if err := db.Table(table).Select("balance").Where("id = ?", id).Take(&row).Error; err != nil {
		t.Fatalf("failed to read %s balance for %s: %v", table, id, err)
	}
	if row.Balance != want {
		t.Errorf("expected %s %s balance %d, got %d", table, id, want, row.Balance)
	}
}
