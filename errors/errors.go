// Package errors defines all exported error sentinels for the phf module.
//
// This is the single source of truth for error values. The runtime package,
// the code generator and the internal construction packages all import from
// here, so errors.Is checks work across package boundaries.
package errors

import "errors"

// Build errors
var (
	ErrDuplicateKey      = errors.New("phf: duplicate key")
	ErrAttemptsExhausted = errors.New("phf: construction attempts exhausted")
	ErrInvalidConfig     = errors.New("phf: invalid construction parameters")
	ErrUnknownGrammar    = errors.New("phf: unknown output grammar")
	ErrTooManyKeys       = errors.New("phf: key count exceeds maximum (2^31-1)")
)

// Table file errors
var (
	ErrInvalidMagic   = errors.New("phf: invalid magic number")
	ErrInvalidVersion = errors.New("phf: unsupported version")
	ErrChecksumFailed = errors.New("phf: table checksum verification failed")
	ErrTruncatedFile  = errors.New("phf: table file is truncated")
	ErrCorruptedTable = errors.New("phf: table data is corrupted")
	ErrNotFound       = errors.New("phf: key not found")
)

// Query errors
var (
	ErrTableClosed = errors.New("phf: table is closed")
)
