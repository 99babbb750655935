package apperror

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned both for missing records and for records owned
	// by someone else, so callers cannot probe for existence.
	ErrNotFound = errors.New("not found")

	ErrUnauthenticated    = errors.New("authentication credentials were not provided")
	ErrUserNotFound       = errors.New("user does not exist")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken covers malformed, expired and revoked bearer tokens.
	ErrInvalidToken = errors.New("invalid token")
)

type Code string

const (
	TitleTooLong     Code = "title_too_long"
	TextRequired     Code = "text_required"
	OwnerMismatch    Code = "owner_mismatch"
	FieldRequired    Code = "required"
	FieldInvalid     Code = "invalid"
	UsernameTaken    Code = "username_taken"
	PasswordMismatch Code = "password_mismatch"
	PasswordTooWeak  Code = "password_too_weak"
)

type FieldError struct {
	Field  string
	Code   Code
	Reason string
}

// ValidationError collects client-fixable problems keyed by field.
type ValidationError struct {
	Errors []FieldError
}

func NewValidationError(field string, code Code, reason string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, code, reason)
	return v
}

func (e *ValidationError) Add(field string, code Code, reason string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Code: code, Reason: reason})
}

func (e *ValidationError) Has(code Code) bool {
	for _, fe := range e.Errors {
		if fe.Code == code {
			return true
		}
	}
	return false
}

func (e *ValidationError) HasField(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Fields renders the errors the way they go out on the wire: field -> messages.
func (e *ValidationError) Fields() map[string][]string {
	out := make(map[string][]string, len(e.Errors))
	for _, fe := range e.Errors {
		out[fe.Field] = append(out[fe.Field], fe.Reason)
	}
	return out
}

// OrNil returns nil when nothing was collected, so it can be returned as error directly.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	fields := e.Fields()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidation unwraps err into a *ValidationError when it carries one.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
