package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusForSentinels(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("%w: bad age", ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: bad ext", ErrUpload), http.StatusBadRequest},
		{fmt.Errorf("%w: no token", ErrUnauthorized), http.StatusUnauthorized},
		{fmt.Errorf("%w: gone", ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: db down", ErrStorage), http.StatusInternalServerError},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for i, tc := range cases {
		if got := StatusFor(tc.err); got != tc.want {
			t.Fatalf("#%d StatusFor(%v): want=%d got=%d", i, tc.err, tc.want, got)
		}
	}
}

func TestCodeForSentinels(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: bad age", ErrValidation), "invalid_input"},
		{fmt.Errorf("%w: bad ext", ErrUpload), "upload_rejected"},
		{fmt.Errorf("%w: no token", ErrUnauthorized), "unauthorized"},
		{fmt.Errorf("%w: gone", ErrNotFound), "not_found"},
		{fmt.Errorf("%w: db down", ErrStorage), "storage_unavailable"},
		{errors.New("anything else"), "internal_error"},
	}
	for i, tc := range cases {
		if got := CodeFor(tc.err); got != tc.want {
			t.Fatalf("#%d CodeFor(%v): want=%q got=%q", i, tc.err, tc.want, got)
		}
	}
}

func TestExplicitErrorWins(t *testing.T) {
	err := New(http.StatusRequestEntityTooLarge, "file_too_large",
		fmt.Errorf("%w: too big", ErrUpload))

	if got := StatusFor(err); got != http.StatusRequestEntityTooLarge {
		t.Fatalf("StatusFor: want=413 got=%d", got)
	}
	if got := CodeFor(err); got != "file_too_large" {
		t.Fatalf("CodeFor: got=%q", got)
	}
	// The sentinel chain still holds for errors.Is checks.
	if !errors.Is(err, ErrUpload) {
		t.Fatalf("errors.Is: explicit error lost its sentinel")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if got := StatusFor(wrapped); got != http.StatusRequestEntityTooLarge {
		t.Fatalf("StatusFor (wrapped): want=413 got=%d", got)
	}
}
