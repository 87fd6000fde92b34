package repository

import "errors"

// ErrNotFound is returned when a row does not exist or is not owned by the
// expected parent. Handlers map it to a 404.
var ErrNotFound = errors.New("record not found")
