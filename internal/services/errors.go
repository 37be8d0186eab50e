package services

import "errors"

// Service errors
var (
	// Dataset errors
	ErrDatasetNotLoaded = errors.New("dataset not loaded")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
)
