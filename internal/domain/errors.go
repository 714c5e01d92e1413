package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidWorkflowStatus is returned when a workflow status is not valid.
	ErrInvalidWorkflowStatus = errors.New("invalid workflow status")

	// ErrInvalidTriggerType is returned when a trigger type is not recognized.
	ErrInvalidTriggerType = errors.New("invalid trigger type")

	// ErrInvalidFiringMode is returned when a firing mode is not recognized.
	ErrInvalidFiringMode = errors.New("invalid firing mode")
)
