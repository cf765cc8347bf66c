package schema

import "fmt"

// ParseError reports a malformed or unresolvable descriptor input. It is
// fatal for the run: no rules are evaluated against a model that failed
// to load.
type ParseError struct {
	File   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.File, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", e.File, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErrorf(file string, err error, format string, args ...interface{}) *ParseError {
	return &ParseError{File: file, Reason: fmt.Sprintf(format, args...), Err: err}
}
