package models

import "errors"

// Sentinel errors shared by the views and the API. Use errors.Is() to check these.
var (
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidCondition = errors.New("invalid condition")
	ErrInvalidPrice     = errors.New("invalid price")

	// ErrNotAuthenticated is returned when an operation needs a signed-in user.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSubmitInFlight rejects a second listing submit while one is pending.
	ErrSubmitInFlight = errors.New("submission already in progress")
)
