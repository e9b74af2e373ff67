package httpx

import (
	"errors"
	"net/http"
	"testing"

	"procurement-backend/internal/repository"
	"procurement-backend/internal/status"

	"github.com/gofiber/fiber/v2"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
}

func TestValidateUsesJSONNames(t *testing.T) {
	err := Validate(&sample{Email: "nope"})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Fields["name"] != "required" || ve.Fields["email"] != "email" {
		t.Fatalf("unexpected fields: %v", ve.Fields)
	}
}

func TestFailMapsKnownErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{repository.ErrNotFound, http.StatusNotFound},
		{repository.ErrDuplicate, http.StatusConflict},
		{&status.TransitionError{Kind: status.Invoice, From: "paid", To: "draft"}, http.StatusConflict},
		{&status.UnknownStatusError{Kind: status.Invoice, Value: "x"}, http.StatusBadRequest},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		got := Fail(nil, "test", "TestFail", tc.err, "Something failed")
		var fe *fiber.Error
		if !errors.As(got, &fe) {
			t.Fatalf("%v: not a fiber error: %v", tc.err, got)
		}
		if fe.Code != tc.code {
			t.Errorf("%v: code %d, want %d", tc.err, fe.Code, tc.code)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	got, err := NormalizePhone("(650) 253-0000", "US")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "+16502530000" {
		t.Errorf("got %s", got)
	}
	if _, err := NormalizePhone("12", "US"); err == nil {
		t.Error("expected invalid number")
	}
}
