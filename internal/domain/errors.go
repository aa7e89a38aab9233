package domain

import "errors"

// ErrInvalidID marks an API payload whose identifying field is missing or malformed.
var ErrInvalidID = errors.New("invalid id")
