package repository

import "errors"

// ErrNotFound is returned when a lookup or update targets a missing alarm.
var ErrNotFound = errors.New("not found")
