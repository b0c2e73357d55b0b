package domain

import "errors"

// ErrNotFound is returned by repositories when a lookup by natural key
// or ID matches no record.
var ErrNotFound = errors.New("record not found")
