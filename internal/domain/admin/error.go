package admin

import "errors"

var (
	ErrMissingParams = errors.New("timestamp and signature are required")
	ErrExpired       = errors.New("request timestamp is outside the allowed window")
	ErrBadSignature  = errors.New("invalid signature")
	ErrNotConfigured = errors.New("admin public key is not configured")
)
