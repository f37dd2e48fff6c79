// Package contact validates contact-form submissions and forwards valid ones
// to an outbound message relay.
package contact

import (
	"regexp"
	"strings"
)

// Field names a form input.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldMessage Field = "message"
)

// Form is the three user-supplied values.
type Form struct {
	Name    string `form:"name" json:"name"`
	Email   string `form:"email" json:"email"`
	Message string `form:"message" json:"message"`
}

// FieldErrors maps an invalid field to the message shown next to it.
type FieldErrors map[Field]string

// Has reports whether f failed validation.
func (e FieldErrors) Has(f Field) bool {
	_, ok := e[f]
	return ok
}

// Get returns the message for f, or "".
func (e FieldErrors) Get(f Field) string {
	return e[f]
}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Name and email end up in mail headers.
func hasLineBreak(s string) bool {
	return strings.ContainsAny(s, "\r\n")
}

// Validate checks every field and returns an empty map when the form is
// good to send.
func (f Form) Validate() FieldErrors {
	errs := FieldErrors{}
	switch name := strings.TrimSpace(f.Name); {
	case name == "":
		errs[FieldName] = "Name is required"
	case hasLineBreak(name):
		errs[FieldName] = "Name is invalid"
	}
	switch email := strings.TrimSpace(f.Email); {
	case email == "":
		errs[FieldEmail] = "Email is required"
	case hasLineBreak(email), !emailPattern.MatchString(email):
		errs[FieldEmail] = "Email is invalid"
	}
	if strings.TrimSpace(f.Message) == "" {
		errs[FieldMessage] = "Message is required"
	}
	return errs
}
