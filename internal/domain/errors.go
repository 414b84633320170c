package domain

import "errors"

// ErrNoResult reports that a source answered but had nothing for the term.
var ErrNoResult = errors.New("no result")
