package models

import "errors"

// Error taxonomy shared by stores, services and controllers. Stores wrap
// driver errors into these sentinels; controllers map them to HTTP status
// codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTransient    = errors.New("transient storage failure")
)
