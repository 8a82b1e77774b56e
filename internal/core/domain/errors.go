package domain

import "errors"

// Common domain errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found")
)

// Wizard errors
var (
	ErrStepPending      = errors.New("a step save is already in progress")
	ErrWrongStep        = errors.New("wizard is not on this step")
	ErrStepNotSaved     = errors.New("step save was not successful")
	ErrNoFaceDetected   = errors.New("no face detected")
	ErrTermsNotAccepted = errors.New("terms not accepted")
	ErrInvalidLoanInput = errors.New("loan amount and tenure must be positive")
)
