package model

import "errors"

// Sentinel errors shared across the lookup pipeline.
//
// ErrNotFound is the expected "this source cannot answer" outcome: unknown
// ticker, unsupported metric, missing dataset. It triggers fallback to the
// next provider and is never fatal.
//
// ErrClassifierUnavailable means the classification oracle could not be
// reached at all. It is kept distinct from ErrNotFound so callers can retry
// the request instead of concluding the value does not exist.
var (
	ErrNotFound              = errors.New("data not found")
	ErrUnknownMetric         = errors.New("unknown metric key")
	ErrClassifierUnavailable = errors.New("classifier unavailable")
)
