package model

import "fmt"

type ValidationCode string

const (
	CodeEmptyTitle       ValidationCode = "empty_title"
	CodeTitleTooLong     ValidationCode = "title_too_long"
	CodeInvalidPriority  ValidationCode = "invalid_priority"
	CodeInvalidDate      ValidationCode = "invalid_date"
	CodePastDate         ValidationCode = "past_date"
	CodeInvalidDateRange ValidationCode = "invalid_date_range"
	CodeInvalidCategory  ValidationCode = "invalid_category"
)

// ValidationError is returned when task input is rejected. It is always
// recoverable: the operation is aborted and no state changes.
type ValidationError struct {
	Code    ValidationCode
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("model: %s", e.Code)
	}
	return fmt.Sprintf("model: %s: %s", e.Code, e.Message)
}

// Is matches any ValidationError carrying the same code, so callers can
// write errors.Is(err, model.ErrTitleTooLong).
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrEmptyTitle       = &ValidationError{Code: CodeEmptyTitle, Field: "title"}
	ErrTitleTooLong     = &ValidationError{Code: CodeTitleTooLong, Field: "title"}
	ErrInvalidPriority  = &ValidationError{Code: CodeInvalidPriority, Field: "priority"}
	ErrInvalidDate      = &ValidationError{Code: CodeInvalidDate, Field: "dueDate"}
	ErrPastDate         = &ValidationError{Code: CodePastDate, Field: "dueDate"}
	ErrInvalidDateRange = &ValidationError{Code: CodeInvalidDateRange, Field: "dueDate"}
	ErrInvalidCategory  = &ValidationError{Code: CodeInvalidCategory, Field: "category"}
)

func newValidationError(code ValidationCode, field, msg string) *ValidationError {
	return &ValidationError{Code: code, Field: field, Message: msg}
}

type WarningCode string

const (
	WarnDuplicate        WarningCode = "duplicate"
	WarnPastDateOverride WarningCode = "past_date_override"
)

// Warning is a non-fatal finding reported alongside a successful mutation.
type Warning struct {
	Code    WarningCode
	Message string
}
