package sources

import (
	"errors"
	"fmt"

	"LookupBot/internal/domain"
)

// ErrNoResult reports that a source answered but had nothing for the term.
var ErrNoResult = domain.ErrNoResult

// errAbandoned marks failures caused by the caller giving up, not by the source.
var errAbandoned = errors.New("lookup abandoned")

// Error describes a source that could not be used: bad status, bad payload or transport failure.
type Error struct {
	Source string
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("%s %s: unexpected status %d", e.Source, e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Source, e.Op, e.Err)
	default:
		return fmt.Sprintf("%s %s failed", e.Source, e.Op)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}
