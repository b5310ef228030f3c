package service

import "errors"

var (
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrOTPMismatch        = errors.New("otp is not matched")
	ErrOTPExpired         = errors.New("otp is expired")
	ErrDelivery           = errors.New("notification delivery failed")
	ErrNotFound           = errors.New("not found")
	ErrSearchDisabled     = errors.New("search is not configured")
)
