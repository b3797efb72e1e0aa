package service

import "errors"

// Business-rule errors returned to the handler layer for translation into
// user-facing responses. Unknown email and wrong password deliberately
// collapse into ErrInvalidCredentials.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("reset token not found")
	ErrTokenExpired       = errors.New("reset token expired")
	ErrTokenAlreadyUsed   = errors.New("reset token already used")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidInput       = errors.New("invalid input")
	ErrMisconfigured      = errors.New("auth config invalid")
)
