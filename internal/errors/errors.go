package errors

import (
	"fmt"
	"sync"
	"time"
)

// Issue is one problem found while checking a document against a form: a
// field error, the form-level error, or a warning raised on the way.
type Issue struct {
	Scope     string        `json:"scope" yaml:"scope"`
	Rule      string        `json:"rule,omitempty" yaml:"rule,omitempty"`
	Message   string        `json:"message" yaml:"message"`
	Severity  ErrorSeverity `json:"severity" yaml:"severity"`
	Timestamp time.Time     `json:"-" yaml:"-"`
}

// ErrorSeverity represents the severity of an error
type ErrorSeverity int

const (
	ErrorSeverityInfo ErrorSeverity = iota
	ErrorSeverityWarning
	ErrorSeverityError
)

// String returns the string representation of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case ErrorSeverityInfo:
		return "info"
	case ErrorSeverityWarning:
		return "warning"
	case ErrorSeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText renders the severity by name in JSON and YAML output.
func (s ErrorSeverity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Error implements the error interface
func (i *Issue) Error() string {
	scope := i.Scope
	if scope == "" {
		scope = "(form)"
	}
	return fmt.Sprintf("%s: %s: %s", scope, i.Severity, i.Message)
}

// ErrorCollector collects the issues of one check
type ErrorCollector struct {
	issues []Issue
	mutex  sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		issues: make([]Issue, 0),
	}
}

// Add adds an issue to the collector
func (ec *ErrorCollector) Add(issue Issue) {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	issue.Timestamp = time.Now()
	ec.issues = append(ec.issues, issue)
}

// GetIssues returns all collected issues
func (ec *ErrorCollector) GetIssues() []Issue {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	result := make([]Issue, len(ec.issues))
	copy(result, ec.issues)
	return result
}

// HasErrors returns true if an issue has error severity. Warnings alone do
// not count.
func (ec *ErrorCollector) HasErrors() bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	for _, issue := range ec.issues {
		if issue.Severity >= ErrorSeverityError {
			return true
		}
	}
	return false
}

// Validation returns the error-severity issues as a collection.
func (ec *ErrorCollector) Validation() *ValidationErrorCollection {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	vec := &ValidationErrorCollection{}
	for _, issue := range ec.issues {
		if issue.Severity >= ErrorSeverityError {
			vec.AddField(issue.Scope, issue.Rule, issue.Message)
		}
	}
	return vec
}
