package errors

import "errors"

var (
	ErrInvalidAPIID  = errors.New("api_id must be a positive number")
	ErrEmptyAPIHash  = errors.New("api_hash is required")
	ErrEmptyPhone    = errors.New("phone number is required")
	ErrEmptyCode     = errors.New("login code is empty")
	ErrEmptyPassword = errors.New("2fa password is empty")
	ErrNoSession     = errors.New("login finished without a session")
)
