package services

import "errors"

// Local validation failures. None of them reaches the network.
var (
	ErrValidation           = errors.New("validation failed")
	ErrUnknownTarget        = errors.New("account is not in the loaded roster")
	ErrSelfTarget           = errors.New("operation not allowed on your own account")
	ErrConfirmationMismatch = errors.New("typed username does not match")
)
