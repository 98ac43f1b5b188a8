package framework

import (
	"strings"
	"sync"
)

// AggregatedError collects the errors of concurrent runners. It is safe
// for concurrent Add and matches every collected error with errors.Is.
type AggregatedError struct {
	lock   sync.Mutex
	Errors []error
}

// Error implements error.
func (e *AggregatedError) Error() string {
	e.lock.Lock()
	defer e.lock.Unlock()
	switch len(e.Errors) {
	case 0:
		return ""
	case 1:
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("Multiple errors:")
	for _, err := range e.Errors {
		sb.WriteString("\n")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Unwrap returns the collected errors.
func (e *AggregatedError) Unwrap() []error {
	e.lock.Lock()
	defer e.lock.Unlock()
	return append([]error(nil), e.Errors...)
}

// Add collects errors, skipping nil.
func (e *AggregatedError) Add(errs ...error) *AggregatedError {
	e.lock.Lock()
	defer e.lock.Unlock()
	for _, err := range errs {
		if err != nil {
			e.Errors = append(e.Errors, err)
		}
	}
	return e
}

// Aggregate returns nil when nothing was collected.
func (e *AggregatedError) Aggregate() error {
	e.lock.Lock()
	defer e.lock.Unlock()
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}
