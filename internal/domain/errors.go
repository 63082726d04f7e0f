package domain

import "errors"

var (
	ErrInvalidEnum     = errors.New("invalid enum value")
	ErrKeyMismatch     = errors.New("candidate and previous instance have different keys")
	ErrMalformedRecord = errors.New("malformed record")
)
