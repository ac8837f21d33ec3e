package entity

import "errors"

// ErrNotFound is returned by store lookups when no row matches. Resolution
// treats it as a normal outcome, not a failure.
var ErrNotFound = errors.New("entity not found")
