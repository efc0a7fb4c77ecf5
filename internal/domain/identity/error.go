package identity

import "errors"

var (
	ErrNoCredential     = errors.New("credential not found")
	ErrInvalidKey       = errors.New("invalid key")
	ErrInvalidSignature = errors.New("invalid signature")
)
