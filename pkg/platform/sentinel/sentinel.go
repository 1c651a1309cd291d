package sentinel

import "errors"

// Sentinel dependency errors. Stores and infrastructure adapters return these
// (optionally wrapped) so services can translate them into domain errors exactly once.
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
	ErrExpired     = errors.New("expired")
	ErrUnavailable = errors.New("unavailable")
)
