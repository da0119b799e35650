package domain

import "errors"

var (
	// ErrNotConnected is returned when operation requires connection
	ErrNotConnected = errors.New("not connected to Telegram")

	// ErrConnectionFailed is returned when connection to Telegram fails
	ErrConnectionFailed = errors.New("connection failed")

	// ErrNotLoggedIn is returned when no session exists for the api_id
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrPasswordNeeded is returned when the account requires a 2FA password
	ErrPasswordNeeded = errors.New("2fa password required")

	// ErrCodeInvalid is returned when the login code is wrong
	ErrCodeInvalid = errors.New("login code is invalid")

	// ErrCodeExpired is returned when the login code has expired
	ErrCodeExpired = errors.New("login code has expired")

	// ErrPasswordInvalid is returned when the 2FA password is rejected
	ErrPasswordInvalid = errors.New("2fa password is invalid")

	// ErrCodeNotRequested is returned when SignIn is called before RequestLoginCode
	ErrCodeNotRequested = errors.New("login code was not requested")

	// ErrSignUpRequired is returned when the phone has no account
	ErrSignUpRequired = errors.New("phone number is not registered")

	// ErrPeerNotFound is returned when the target conversation cannot be found
	ErrPeerNotFound = errors.New("conversation not found")

	// ErrInvalidTarget is returned when the target identifier is malformed
	ErrInvalidTarget = errors.New("invalid conversation target")

	// ErrSessionRevoked is returned when session is revoked
	ErrSessionRevoked = errors.New("session has been revoked")

	// ErrFloodWait is returned when flood wait is required
	ErrFloodWait = errors.New("flood wait required")

	// ErrBusy is returned when another operation already holds the gate
	ErrBusy = errors.New("another operation is already running")
)
