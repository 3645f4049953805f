package application

import "errors"

var (
	ErrRefreshInFlight    = errors.New("refresh already in flight")
	ErrDuplicateRequest   = errors.New("duplicate request")
	ErrUserExists         = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
