package clinicerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestValidationError_Message(t *testing.T) {
	err := Validation("name", "must not be empty")
	if err.Error() != "invalid name: must not be empty" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if !IsValidation(err) {
		t.Error("expected IsValidation to be true")
	}
}

func TestNotFound_Wrapped(t *testing.T) {
	err := fmt.Errorf("load patient: %w", NotFound("patient", "abc"))
	if !IsNotFound(err) {
		t.Error("expected IsNotFound to see through wrapping")
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Kind != "patient" {
		t.Errorf("expected patient kind, got %+v", nf)
	}
}

func TestConflict(t *testing.T) {
	err := Conflictf("reward already %s", "active")
	if !IsConflict(err) {
		t.Error("expected IsConflict to be true")
	}
	if IsNotFound(err) || IsValidation(err) {
		t.Error("conflict must not match other kinds")
	}
}

func TestInsufficientBalance_Fields(t *testing.T) {
	err := InsufficientBalance(300, 200)
	var ib *InsufficientBalanceError
	if !errors.As(err, &ib) {
		t.Fatal("expected InsufficientBalanceError")
	}
	if ib.Required != 300 || ib.Available != 200 {
		t.Errorf("unexpected fields: %+v", ib)
	}
}

func TestHTTPError_Mapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{NotFound("reward", "x"), http.StatusNotFound},
		{Conflict("already active"), http.StatusConflict},
		{Validation("status", "unknown"), http.StatusBadRequest},
		{InsufficientBalance(10, 5), http.StatusUnprocessableEntity},
		{BalanceCap(10500, 10000), http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPError(tc.err); got.Code != tc.code {
			t.Errorf("HTTPError(%v) = %d, want %d", tc.err, got.Code, tc.code)
		}
	}
}
