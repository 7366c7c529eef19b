package domain

import "errors"

// Store errors. Repositories translate driver errors into these so that
// services never depend on gorm.
var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicate        = errors.New("record already exists")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Session errors
var (
	ErrTokenExpired    = errors.New("token expired")
	ErrTokenInvalid    = errors.New("token invalid")
	ErrTokenRevoked    = errors.New("token has been logged out")
	ErrMalformedClaims = errors.New("token claims malformed")
	ErrUnknownSubject  = errors.New("token subject not found")
	ErrAlreadyRevoked  = errors.New("token is already revoked")
)

// Validation errors
var (
	ErrUsernameRequired = errors.New("username is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrInvalidEmail     = errors.New("email is invalid")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes")
	ErrTitleRequired    = errors.New("title is required")
)
