package domain

import "errors"

var (
	ErrInvalidUsername   = errors.New("invalid username")
	ErrInvalidEmail      = errors.New("invalid email")
	ErrEmptyPasswordHash = errors.New("empty password hash")

	ErrEmptyText   = errors.New("empty message text")
	ErrTextTooLong = errors.New("message text too long")
	ErrSelfMessage = errors.New("sender and recipient are the same user")

	ErrUserNotFound    = errors.New("user not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrEmailTaken      = errors.New("email already taken")
)
