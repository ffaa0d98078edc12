package services

import "errors"

var (
	// common errors
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")

	// collaborator errors
	ErrUpstreamGeneration = errors.New("generation failed")
	ErrStorage            = errors.New("storage error")
)
