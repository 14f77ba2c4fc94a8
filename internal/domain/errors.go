package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrIntentNotReady  = errors.New("intent not confirmed")
	ErrSessionNotFound = errors.New("session not found")
)
