package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeMisuse     ErrorType = "misuse"
	ErrorTypeDefinition ErrorType = "definition"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// FormError is a structured error type with context.
type FormError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Scope       string
	FilePath    string
	Recoverable bool
}

// Error implements the error interface.
func (e *FormError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Scope != "" {
		parts = append(parts, "scope:"+e.Scope)
	}

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *FormError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *FormError) Is(target error) bool {
	var t *FormError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *FormError) WithContext(key string, value interface{}) *FormError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithScope attaches the key path the error relates to.
func (e *FormError) WithScope(scope string) *FormError {
	e.Scope = scope

	return e
}

// WithFile attaches the file the error relates to.
func (e *FormError) WithFile(path string) *FormError {
	e.FilePath = path

	return e
}

// Error creation functions

// NewMisuseError creates an error describing API misuse. Misuse is reported,
// never fatal.
func NewMisuseError(code, message string) *FormError {
	return &FormError{
		Type:        ErrorTypeMisuse,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewDefinitionError creates an error for an invalid form definition.
func NewDefinitionError(code, message string) *FormError {
	return &FormError{
		Type:        ErrorTypeDefinition,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *FormError {
	return &FormError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *FormError {
	return &FormError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var fe *FormError
	if errors.As(err, &fe) {
		return fe.Recoverable
	}

	return false
}

// IsMisuse checks if an error reports API misuse.
func IsMisuse(err error) bool {
	var fe *FormError
	if errors.As(err, &fe) {
		return fe.Type == ErrorTypeMisuse
	}

	return false
}

// ErrorHandler provides centralized error handling.
type ErrorHandler struct {
	logger Logger
}

// Logger interface for error logging.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs err at a level chosen from its type. Misuse, validation and
// other recoverable errors are warnings.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var fe *FormError
	if !errors.As(err, &fe) {
		h.logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	switch fe.Type {
	case ErrorTypeMisuse:
		h.logger.Warn(ctx, fe, "Form API misuse",
			"code", fe.Code,
			"scope", fe.Scope)
	case ErrorTypeValidation:
		h.logger.Warn(ctx, fe, "Validation error occurred",
			"code", fe.Code,
			"scope", fe.Scope)
	default:
		fields := []interface{}{"type", fe.Type, "code", fe.Code, "file", fe.FilePath}
		if IsRecoverable(fe) {
			h.logger.Warn(ctx, fe, "Error occurred", fields...)
			return
		}
		h.logger.Error(ctx, fe, "Error occurred", fields...)
	}
}

// Common error codes.
const (
	ErrCodeDuplicateRegistration = "ERR_DUPLICATE_REGISTRATION"
	ErrCodeDeprecatedOption      = "ERR_DEPRECATED_OPTION"
	ErrCodeConflictingOptions    = "ERR_CONFLICTING_OPTIONS"
	ErrCodePatchClosed           = "ERR_PATCH_CLOSED"
	ErrCodeNotSequence           = "ERR_NOT_SEQUENCE"
	ErrCodeIndexOutOfRange       = "ERR_INDEX_OUT_OF_RANGE"
	ErrCodeInvalidDefinition     = "ERR_INVALID_DEFINITION"
	ErrCodeConfigInvalid         = "ERR_CONFIG_INVALID"
	ErrCodeFileNotFound          = "ERR_FILE_NOT_FOUND"
	ErrCodeDecodeFailed          = "ERR_DECODE_FAILED"
	ErrCodeInternalError         = "ERR_INTERNAL"
	ErrCodeValidationFailed      = "ERR_VALIDATION_FAILED"
)

// ValidationError interface for field-specific validation errors.
type ValidationError interface {
	error
	Field() string
	Rule() string
}

// FieldValidationError implements ValidationError for one failed field.
type FieldValidationError struct {
	FieldName    string
	RuleName     string
	ErrorMessage string
}

// Error implements the error interface.
func (fve *FieldValidationError) Error() string {
	return fmt.Sprintf("validation error in field '%s': %s", fve.FieldName, fve.ErrorMessage)
}

// Field returns the scope of the field that failed validation.
func (fve *FieldValidationError) Field() string {
	return fve.FieldName
}

// Rule returns the failed rule name.
func (fve *FieldValidationError) Rule() string {
	return fve.RuleName
}

// NewFieldValidationError creates a new field validation error.
func NewFieldValidationError(field, rule, message string) *FieldValidationError {
	return &FieldValidationError{
		FieldName:    field,
		RuleName:     rule,
		ErrorMessage: message,
	}
}

// ValidationErrorCollection represents a collection of validation errors.
type ValidationErrorCollection struct {
	Errors []ValidationError
}

// Error implements the error interface.
func (vec *ValidationErrorCollection) Error() string {
	if len(vec.Errors) == 0 {
		return "no validation errors"
	}
	if len(vec.Errors) == 1 {
		return vec.Errors[0].Error()
	}

	return fmt.Sprintf("validation failed with %d errors", len(vec.Errors))
}

// Add adds a validation error to the collection.
func (vec *ValidationErrorCollection) Add(err ValidationError) {
	vec.Errors = append(vec.Errors, err)
}

// AddField adds a field validation error to the collection.
func (vec *ValidationErrorCollection) AddField(field, rule, message string) {
	vec.Add(NewFieldValidationError(field, rule, message))
}

// HasErrors returns true if there are any validation errors.
func (vec *ValidationErrorCollection) HasErrors() bool {
	return len(vec.Errors) > 0
}

// ToFormError converts the validation collection to a FormError.
func (vec *ValidationErrorCollection) ToFormError() *FormError {
	if !vec.HasErrors() {
		return nil
	}

	var messages []string
	context := make(map[string]interface{})

	for _, err := range vec.Errors {
		messages = append(messages, err.Error())
		context[err.Field()] = err.Rule()
	}

	return &FormError{
		Type:        ErrorTypeValidation,
		Code:        ErrCodeValidationFailed,
		Message:     strings.Join(messages, "; "),
		Context:     context,
		Recoverable: true,
	}
}

// Helper functions for common errors

// ErrDuplicateRegistration reports a name registered twice in one scope.
func ErrDuplicateRegistration(name string) *FormError {
	return NewMisuseError(
		ErrCodeDuplicateRegistration,
		fmt.Sprintf("%q has been registered on this form, it should be registered only once", name),
	)
}

// ErrDeprecatedOption reports use of an option kept only for compatibility.
func ErrDeprecatedOption(option, replacement string) *FormError {
	return NewMisuseError(
		ErrCodeDeprecatedOption,
		fmt.Sprintf("`%s` has been deprecated in favor of `%s`", option, replacement),
	)
}

// ErrPatchClosed reports a cascade patch call made after its cascade returned.
func ErrPatchClosed(scope string) *FormError {
	return NewMisuseError(
		ErrCodePatchClosed,
		"patch called after its cascade returned, the write is ignored",
	).WithScope(scope)
}

// ErrIndexOutOfRange reports a patch key that does not address an existing
// element of a sequence or the position right after it.
func ErrIndexOutOfRange(scope, key string, length int) *FormError {
	return NewMisuseError(
		ErrCodeIndexOutOfRange,
		fmt.Sprintf("key %q is not an index of a sequence of length %d, the write is ignored", key, length),
	).WithScope(scope)
}

// ErrInvalidDefinition creates a definition error.
func ErrInvalidDefinition(message string) *FormError {
	return NewDefinitionError(ErrCodeInvalidDefinition, message)
}
