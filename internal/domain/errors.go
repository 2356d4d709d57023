package domain

import "errors"

var (
	// ErrCountryNotFound is returned when a country id is absent from the catalog.
	ErrCountryNotFound = errors.New("country not found")
	// ErrCatalogEmpty indicates the country fact catalog has no entries.
	ErrCatalogEmpty = errors.New("country catalog is empty")
	// ErrInvalidFact indicates a country fact record failed boundary validation.
	ErrInvalidFact = errors.New("invalid country fact")
	// ErrUnknownCategory indicates a category outside the fixed set.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrUnknownDifficulty indicates a difficulty outside easy/medium/hard.
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)
