package ledger

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorTaxonomy(t *testing.T) {
	ve := invalid("name", "required")
	if !IsValidation(ve) {
		t.Fatalf("expected validation error, got %v", ve)
	}
	if ve.Error() != "name: required" {
		t.Fatalf("unexpected message: %s", ve.Error())
	}
	if IsValidation(invalid("", "boom")) && invalid("", "boom").Error() != "boom" {
		t.Fatalf("field-less validation error should print the bare message")
	}

	if !IsUnauthorized(ErrUnauthorized) {
		t.Fatal("ErrUnauthorized must satisfy IsUnauthorized")
	}
	nf := &NotFoundError{Entity: "tag"}
	if !IsNotFound(nf) || nf.Error() != "tag not found" {
		t.Fatalf("not-found mismatch: %v", nf)
	}
	ce := conflict("tag %q already exists", "Work")
	if !IsConflict(ce) || ce.Error() != `tag "Work" already exists` {
		t.Fatalf("conflict mismatch: %v", ce)
	}

	// checks must survive wrapping
	wrapped := fmt.Errorf("saving tag: %w", ErrUnauthorized)
	if !IsUnauthorized(wrapped) {
		t.Fatal("wrapped authorization error not detected")
	}
	if IsValidation(wrapped) || IsNotFound(wrapped) || IsConflict(wrapped) {
		t.Fatal("taxonomy predicates must not overlap")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New(`ERROR: duplicate key value violates unique constraint "idx_books_owner_name" (SQLSTATE 23505)`), true},
		{errors.New("UNIQUE constraint failed: books.name"), false},
		{errors.New("unique constraint violated"), true},
		{errors.New("connection refused"), false},
	}
	for _, c := range cases {
		if got := isUniqueViolation(c.err); got != c.want {
			t.Errorf("isUniqueViolation(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}
