package domain

import "errors"

var (
	// ErrNonPositiveBalance is the validation error for balance <= 0.
	ErrNonPositiveBalance = errors.New("balance must be greater than zero")

	ErrAgencyNotFound     = errors.New("agency not found")
	ErrNoDefaultAgency    = errors.New("no default agency configured")
	ErrAgencyNameRequired = errors.New("agency name is required")

	// Structural import failures. They abort the whole file.
	ErrEmptyFile     = errors.New("csv file is empty")
	ErrMissingColumn = errors.New("missing required column")
	ErrInvalidAmount = errors.New("invalid balance")

	// ErrImportBusy is returned when another import holds the import lock.
	ErrImportBusy = errors.New("another import is in progress")
)
