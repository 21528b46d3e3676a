package services

import "errors"

// Sentinel errors the handler layer maps onto HTTP statuses. Ownership is
// never leaked: a resource owned by another user surfaces as ErrNotFound,
// exactly like a nonexistent one.
var (
	ErrNotFound            = errors.New("not found")
	ErrUnsupportedMode     = errors.New("unsupported chat mode")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrInvalidCredentials  = errors.New("incorrect username or password")
	ErrDisallowedExtension = errors.New("file type not allowed")
	ErrFileTooLarge        = errors.New("file exceeds the size limit")
	ErrExtractionFailed    = errors.New("could not extract file content")
)
