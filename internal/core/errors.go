package core

import (
	"errors"
	"fmt"
	"strings"
)

// Terminal failure classes of a user action. None of them are retried.
var (
	ErrValidation = errors.New("missing or invalid fields")
	ErrUpload     = errors.New("photo upload failed")
	ErrWrite      = errors.New("write failed")
	ErrRead       = errors.New("read failed")
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrNoCategory         = errors.New("no category selected")
	ErrEmptyName          = errors.New("empty category name")
	ErrEmptyEmail         = errors.New("empty email")
	ErrEmptyPassword      = errors.New("empty password")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrNoPhotoURL         = errors.New("upload returned no url")
	ErrInvalidPhoto       = errors.New("selected file is not an image")
	ErrPhotoTooLarge      = errors.New("photo too large")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyInUse  = errors.New("email already registered")
	ErrPhotoNotFound      = errors.New("photo not found")

	// ErrConfirmationPending is returned by SignUp when the account must be
	// confirmed by e-mail before the first sign in.
	ErrConfirmationPending = errors.New("check your inbox to confirm the account before signing in")
)

// FieldError names a single form field that failed validation.
type FieldError struct {
	Field string
	Err   error
}

// ValidationError is returned before any backend call is made.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" ("+f.Err.Error()+")")
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Fields))
	for _, f := range e.Fields {
		errs = append(errs, f.Err)
	}
	return errs
}

// HasField reports whether the named field failed.
func (e *ValidationError) HasField(name string) bool {
	for _, f := range e.Fields {
		if f.Field == name {
			return true
		}
	}
	return false
}

// UploadError means the photo upload produced no URL.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%v: %v", ErrUpload, e.Err)
}

func (e *UploadError) Is(target error) bool { return target == ErrUpload }
func (e *UploadError) Unwrap() error        { return e.Err }

// WriteError means the backend reported a failed record write.
type WriteError struct {
	Resource string
	Err      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %v: %v", e.Resource, ErrWrite, e.Err)
}

func (e *WriteError) Is(target error) bool { return target == ErrWrite }
func (e *WriteError) Unwrap() error        { return e.Err }

// ReadError means a list refresh failed. Callers keep the stale list.
type ReadError struct {
	Resource string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s %v: %v", e.Resource, ErrRead, e.Err)
}

func (e *ReadError) Is(target error) bool { return target == ErrRead }
func (e *ReadError) Unwrap() error        { return e.Err }
