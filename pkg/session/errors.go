package session

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrInvalidOTP      = errors.New("invalid verification code")
	ErrNoResult        = errors.New("no generated content to export")
	ErrMissingName     = errors.New("name is required")
	ErrNoJournal       = errors.New("transaction journal is not configured")
)
