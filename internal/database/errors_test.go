package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

func TestIsConcurrencyConflict(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain_error", errors.New("boom"), false},
		{"pg_serialization_failure", &pgconn.PgError{Code: "40001"}, true},
		{"pg_deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"pg_lock_not_available", &pgconn.PgError{Code: "55P03"}, true},
		{"pg_unique_violation", &pgconn.PgError{Code: "23505"}, false},
		{"pg_wrapped", fmt.Errorf("apply deltas: %w", &pgconn.PgError{Code: "40001"}), true},
		{"sqlite_busy", sqlite3.Error{Code: sqlite3.ErrBusy}, true},
		{"sqlite_locked", sqlite3.Error{Code: sqlite3.ErrLocked}, true},
		{"sqlite_constraint", sqlite3.Error{Code: sqlite3.ErrConstraint}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsConcurrencyConflict(tc.err); got != tc.want {
				t.Errorf("IsConcurrencyConflict(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain_error", errors.New("boom"), false},
		{"pg_foreign_key", &pgconn.PgError{Code: "23503"}, true},
		{"pg_wrapped", fmt.Errorf("write tags: %w", &pgconn.PgError{Code: "23503"}), true},
		{"pg_unique_violation", &pgconn.PgError{Code: "23505"}, false},
		{"sqlite_foreign_key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, true},
		{"sqlite_unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsForeignKeyViolation(tc.err); got != tc.want {
				t.Errorf("IsForeignKeyViolation(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
