package recording

import "errors"

var (
	// ErrHeaderNotFound reports a missing header row or header token.
	ErrHeaderNotFound = errors.New("recording: header not found")
	// ErrColumnNotFound reports a layout column absent from the file.
	ErrColumnNotFound = errors.New("recording: column not found")
	// ErrNoSamples reports an empty recording or an empty selection.
	ErrNoSamples = errors.New("recording: no samples retained")
	// ErrMalformedRow reports a row that is not uniform-width numeric data.
	ErrMalformedRow = errors.New("recording: malformed row")
	// ErrNonMonotonicTime reports timestamps that do not strictly increase.
	ErrNonMonotonicTime = errors.New("recording: timestamps not strictly increasing")
	// ErrAxisMissing reports a request for an axis the recording lacks.
	ErrAxisMissing = errors.New("recording: axis not present")
	// ErrUnknownLayout reports an unregistered layout name.
	ErrUnknownLayout = errors.New("recording: unknown layout")
)
