package entity

import "errors"

// Domain errors
var (
	// Error classes
	ErrConfiguration = errors.New("configuration error")
	ErrCollaborator  = errors.New("collaborator error")
	ErrValidation    = errors.New("validation error")

	// File errors
	ErrInvalidFile       = errors.New("invalid file")
	ErrFileTooLarge      = errors.New("file too large")
	ErrTooManyFiles      = errors.New("too many files")
	ErrInvalidExtension  = errors.New("invalid file extension")
	ErrTotalSizeTooLarge = errors.New("total file size too large")

	// Validation errors
	ErrMissingField      = errors.New("required field is missing")
	ErrInvalidFormat     = errors.New("invalid format")
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrUnsupportedFormat = errors.New("unsupported format")
)
