// Package validate implements the client-side checks that run before a form is
// submitted. Failures never reach the network layer.
package validate

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Error is a single invalid field.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Field + ": " + e.Message
}

// Errors collects every invalid field of one form, in check order.
type Errors []*Error

func (es Errors) Error() string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// Field returns the message recorded for name, if any.
func (es Errors) Field(name string) (string, bool) {
	for _, e := range es {
		if e.Field == name {
			return e.Message, true
		}
	}
	return "", false
}

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	var one *Error
	var many Errors
	return errors.As(err, &one) || errors.As(err, &many)
}

// Checker accumulates failures; the first failure per field wins.
type Checker struct {
	errs Errors
}

func (c *Checker) fail(field, msg string) {
	if _, ok := c.errs.Field(field); ok {
		return
	}
	c.errs = append(c.errs, &Error{Field: field, Message: msg})
}

func (c *Checker) Required(field, value string) *Checker {
	if strings.TrimSpace(value) == "" {
		c.fail(field, "is required")
	}
	return c
}

func (c *Checker) Email(field, value string) *Checker {
	if strings.TrimSpace(value) == "" {
		return c
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || !strings.Contains(value[strings.LastIndex(value, "@")+1:], ".") {
		c.fail(field, "must be a valid email address")
	}
	return c
}

func (c *Checker) MinLen(field, value string, n int) *Checker {
	if utf8.RuneCountInString(value) < n {
		c.fail(field, fmt.Sprintf("must be at least %d characters", n))
	}
	return c
}

func (c *Checker) MaxLen(field, value string, n int) *Checker {
	if utf8.RuneCountInString(value) > n {
		c.fail(field, fmt.Sprintf("must be at most %d characters", n))
	}
	return c
}

// Length applies MinLen and MaxLen only when value is non-empty.
func (c *Checker) Length(field, value string, min, max int) *Checker {
	if value == "" {
		return c
	}
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		c.fail(field, fmt.Sprintf("must be between %d and %d characters", min, max))
	}
	return c
}

func (c *Checker) Check(ok bool, field, msg string) *Checker {
	if !ok {
		c.fail(field, msg)
	}
	return c
}

// Err returns nil, a single *Error, or Errors.
func (c *Checker) Err() error {
	switch len(c.errs) {
	case 0:
		return nil
	case 1:
		return c.errs[0]
	default:
		return c.errs
	}
}
