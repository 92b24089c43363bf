package auth

import "errors"

const minPasswordLen = 6

var (
	errInvalidEmail  = errors.New("enter a valid email address")
	errShortPassword = errors.New("password must be at least 6 characters")
)
