package service

import "errors"

var (
	ErrValidation         = errors.New("validation_failed")
	ErrConflict           = errors.New("already_exists")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrNotFound           = errors.New("not_found")
)
