package model

import "errors"

// Common errors used across the application
var (
	// Session errors
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionFinished      = errors.New("no more questions in session")
	ErrInvalidQuestionIndex = errors.New("invalid question index")
	ErrInvalidSessionConfig = errors.New("invalid session configuration")
	ErrUnknownScoringPolicy = errors.New("unknown scoring policy")

	// Leaderboard errors
	ErrInvalidEntry = errors.New("invalid leaderboard entry")

	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Storage errors
	ErrMalformedStore = errors.New("malformed record store")
)
