package crossrate

import "errors"

var (
	// ErrInvalidRange is returned when the range start is after its end
	ErrInvalidRange = errors.New("invalid date range")

	// ErrSourceUnavailable is returned when the rate source cannot be reached,
	// or answers with an unexpected status
	ErrSourceUnavailable = errors.New("rate source unavailable")

	// ErrMalformedResponse is returned when the rate source payload cannot be parsed
	ErrMalformedResponse = errors.New("malformed rate source response")

	// ErrCacheWrite is returned when fetched observations cannot be cached
	ErrCacheWrite = errors.New("unable to write to rate cache")
)
