package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrValidation          = errors.New("invalid input data")
	ErrInternal            = errors.New("internal server error")
	ErrSchema              = errors.New("schema error")
	ErrUnavailable         = errors.New("service unavailable")
)
