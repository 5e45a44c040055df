package config

import "errors"

// Configuration errors. Callers match them with errors.Is.
var (
	// ErrNoQueries is returned when neither --search nor the input file
	// provides a query.
	ErrNoQueries = errors.New("you must either pass -s or add searches to input.txt")

	// ErrInvalidTotal is returned when the requested number of new records is not positive.
	ErrInvalidTotal = errors.New("invalid total: must be positive")

	ErrUnknownBackend = errors.New("unknown storage backend: use csv or sqlite")
	ErrNoDataDir      = errors.New("data directory must not be empty")
	ErrInvalidScroll  = errors.New("invalid scroll distance: must be positive")
)
