package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownField     = errors.New("unknown field")
	ErrFieldReadOnly    = errors.New("field is read only")
	ErrWizardSubmitted  = errors.New("wizard already submitted")
	ErrWizardSubmitting = errors.New("submission in progress")
	ErrStepGateFailed   = errors.New("current step is not valid")
	ErrNoPreviousStep   = errors.New("already at the first step")
)

// FormatError reports that a raw value could not be converted to its
// canonical wire form. Expected carries an example of an accepted input.
type FormatError struct {
	Field    Field
	Expected string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: expected format like %q", e.Field, e.Expected)
}

// FieldError is a single failed constraint, produced by step validation.
type FieldError struct {
	Field   Field
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates every failed constraint of a validation pass.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	if len(e.Fields) == 1 {
		return "validation failed: " + e.Fields[0].Error()
	}
	return fmt.Sprintf("validation failed: %s (and %d more)", e.Fields[0].Error(), len(e.Fields)-1)
}

// SubmissionKind classifies a rejected registration call.
type SubmissionKind string

const (
	SubmissionDuplicateUsername SubmissionKind = "duplicate_username"
	SubmissionDuplicateEmail    SubmissionKind = "duplicate_email"
	SubmissionDuplicatePhone    SubmissionKind = "duplicate_phone"
	SubmissionInvalidPhone      SubmissionKind = "invalid_phone"
	SubmissionPasswordPolicy    SubmissionKind = "password_policy"
	SubmissionInvalidParameter  SubmissionKind = "invalid_parameter"
	SubmissionFailed            SubmissionKind = "failed"
)

// SubmissionError is the classified outcome of a rejected registerAccount
// call. Field names the record slot the user should correct, when known.
type SubmissionError struct {
	Kind    SubmissionKind
	Field   Field
	Message string
	cause   error
}

func NewSubmissionError(kind SubmissionKind, field Field, message string, cause error) *SubmissionError {
	return &SubmissionError{Kind: kind, Field: field, Message: message, cause: cause}
}

func (e *SubmissionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("submission rejected (%s, field %s): %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("submission rejected (%s): %s", e.Kind, e.Message)
}

func (e *SubmissionError) Unwrap() error { return e.cause }

// Recoverable reports whether the user can correct a field and resubmit
// without restarting the wizard.
func (e *SubmissionError) Recoverable() bool {
	return e.Kind != SubmissionFailed
}
