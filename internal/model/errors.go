package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by lookups of unknown steps, actions or records.
var ErrNotFound = errors.New("not found")

// ErrInvalidPathText is matched by every enumeration-text parse failure.
var ErrInvalidPathText = errors.New("invalid path text")

// InvalidPathTextError locates an enumeration-text parse failure.
type InvalidPathTextError struct {
	Record string // friendly name of the record being edited
	Line   string
	LineNo int
	Reason string
}

func (e *InvalidPathTextError) Error() string {
	name := e.Record
	if name == "" {
		name = "[]"
	}
	return fmt.Sprintf("%s: record %s, line %d %q: %s", ErrInvalidPathText, name, e.LineNo, e.Line, e.Reason)
}

func (e *InvalidPathTextError) Unwrap() error { return ErrInvalidPathText }
