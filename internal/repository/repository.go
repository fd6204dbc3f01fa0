package repository

import "errors"

// ErrNotFound is returned by any repository when the requested record does
// not exist. Services translate it into their own taxonomy.
var ErrNotFound = errors.New("record not found")
