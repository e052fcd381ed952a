package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid employee id, email or password")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrIncorrectPassword  = errors.New("current password is incorrect")
)
