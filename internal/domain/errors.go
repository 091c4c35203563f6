package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyRegistered   = errors.New("already registered")
	ErrNotificationFailure = errors.New("notification failure")
	ErrNoPendingOTP        = errors.New("no pending otp")
	ErrExpired             = errors.New("otp expired")
	ErrMismatch            = errors.New("otp mismatch")
	ErrNotVerified         = errors.New("contact not verified")
	ErrProvisioningFailure = errors.New("provisioning failure")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)
