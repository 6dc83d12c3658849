package application

import (
	"fmt"
	"testing"
)

func TestValidationError(t *testing.T) {
	t.Parallel()

	var empty *ValidationError
	if empty.HasErrors() {
		t.Fatal("nil validation error should report no errors")
	}

	vErr := &ValidationError{}
	if vErr.HasErrors() {
		t.Fatal("fresh validation error should report no errors")
	}

	vErr.add("name", "クラブ名は必須です")
	if !vErr.HasErrors() {
		t.Fatal("expected recorded field error")
	}
	if vErr.FieldErrors["name"] != "クラブ名は必須です" {
		t.Fatalf("unexpected field errors: %v", vErr.FieldErrors)
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"not found", ErrNotFound, "not_found"},
		{"already exists", fmt.Errorf("wrap: %w", ErrAlreadyExists), "already_exists"},
		{"validation", &ValidationError{FieldErrors: map[string]string{"name": "required"}}, "validation"},
		{"unexpected", fmt.Errorf("boom"), "unexpected"},
	}
	for _, tc := range cases {
		if got := ErrorKind(tc.err); got != tc.want {
			t.Fatalf("%s: ErrorKind = %q, want %q", tc.name, got, tc.want)
		}
	}
}
