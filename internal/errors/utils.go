package errors

import (
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context, creating a FormError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *FormError {
	if err == nil {
		return nil
	}

	// Keep scope and file of an inner FormError, the outer one only refines the message
	var fe *FormError
	if errors.As(err, &fe) {
		return &FormError{
			Type:        errType,
			Code:        code,
			Message:     message,
			Cause:       fe,
			Context:     fe.Context,
			Scope:       fe.Scope,
			FilePath:    fe.FilePath,
			Recoverable: fe.Recoverable,
		}
	}

	return &FormError{
		Type:        errType,
		Code:        code,
		Message:     message,
		Cause:       err,
		Recoverable: errType == ErrorTypeValidation || errType == ErrorTypeMisuse,
	}
}

// WrapIO wraps an error as an I/O error
func WrapIO(err error, code, message string) *FormError {
	fe := Wrap(err, ErrorTypeIO, code, message)
	if fe != nil {
		fe.Recoverable = false
	}
	return fe
}

// WrapConfig wraps an error as a configuration error
func WrapConfig(err error, code, message string) *FormError {
	fe := Wrap(err, ErrorTypeConfig, code, message)
	if fe != nil {
		fe.Recoverable = false
	}
	return fe
}

// WrapDefinition wraps an error as a definition error
func WrapDefinition(err error, code, message string) *FormError {
	fe := Wrap(err, ErrorTypeDefinition, code, message)
	if fe != nil {
		fe.Recoverable = false
	}
	return fe
}

// FormatError formats an error for user display
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var fe *FormError
	if errors.As(err, &fe) {
		return fe.Error()
	}

	return err.Error()
}

// CombineErrors combines multiple errors into a single error with context
func CombineErrors(errs ...error) error {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}
	if len(nonNil) == 0 {
		return nil
	}
	if len(nonNil) == 1 {
		return nonNil[0]
	}

	messages := make([]string, 0, len(nonNil))
	for _, err := range nonNil {
		messages = append(messages, err.Error())
	}

	return &FormError{
		Type:    ErrorTypeInternal,
		Code:    "ERR_MULTIPLE_ERRORS",
		Message: fmt.Sprintf("multiple errors occurred: %d errors", len(nonNil)),
		Context: map[string]interface{}{
			"error_count": len(nonNil),
			"errors":      messages,
		},
		Recoverable: false,
	}
}
