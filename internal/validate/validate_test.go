package validate

import (
	"errors"
	"fmt"
	"testing"
)

func TestChecker(t *testing.T) {
	var c Checker
	c.Required("email", "").
		Email("email", "").
		MinLen("password", "short", 8).
		Length("username", "a", 2, 50)

	err := c.Err()
	var es Errors
	if !errors.As(err, &es) {
		t.Fatalf("err = %T, want Errors", err)
	}
	if len(es) != 3 {
		t.Fatalf("got %d errors: %v", len(es), es)
	}
	if msg, _ := es.Field("email"); msg != "is required" {
		t.Errorf("email msg = %q", msg)
	}
}

func TestEmail(t *testing.T) {
	cases := map[string]bool{
		"user@example.com":    true,
		"user@localhost":      false,
		"Bob <bob@x.com>":     false,
		"not-an-email":        false,
		"first.last@mail.org": true,
	}
	for in, ok := range cases {
		var c Checker
		c.Email("email", in)
		if (c.Err() == nil) != ok {
			t.Errorf("Email(%q) err = %v, want ok=%v", in, c.Err(), ok)
		}
	}
}

func TestSingleErrorAndIsValidation(t *testing.T) {
	var c Checker
	c.MaxLen("bio", "0123456789", 5)
	err := c.Err()
	var one *Error
	if !errors.As(err, &one) || one.Field != "bio" {
		t.Fatalf("err = %v", err)
	}
	if !IsValidation(fmt.Errorf("wrapped: %w", err)) {
		t.Error("IsValidation should see through wrapping")
	}
	if IsValidation(errors.New("other")) {
		t.Error("IsValidation true for unrelated error")
	}
}
