package models

import "errors"

// Custom errors
var (
	// ErrNotFound signals that no snapshot (or record) exists for the
	// requested key. Client-visible, never retried automatically.
	ErrNotFound = errors.New("record not found")

	// ErrDataQuality signals an upstream feed defect, e.g. duplicate
	// selections inside one snapshot. Surfaced, never silently repaired.
	ErrDataQuality = errors.New("data quality violation")

	// ErrStoreFault signals a transient store failure. The whole ledger
	// batch is rolled back and the caller may retry the entire request.
	ErrStoreFault = errors.New("store fault")

	// ErrConfigInvalid signals malformed configuration, fatal at startup.
	ErrConfigInvalid = errors.New("invalid configuration")
)
