package model

import "errors"

// ErrNotFound is returned when a requested descriptor or archive does not exist
var ErrNotFound = errors.New("not found")
