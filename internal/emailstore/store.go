package emailstore

import (
	"context"
	"time"
)

// Record is one stored submission. Email is already normalized (trimmed,
// lowercase) by the validation pipeline before it reaches a store.
type Record struct {
	Email     string    `json:"email"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	Consent   bool      `json:"consent"`
}

// SaveStatus is the internal outcome of a save. Callers collapse Duplicate
// and Dropped into success.
type SaveStatus int

const (
	// StatusStored means a new record was appended and persisted.
	StatusStored SaveStatus = iota
	// StatusDuplicate means the normalized email already exists.
	StatusDuplicate
	// StatusDropped means a capacity cap silently swallowed the record.
	StatusDropped
)

// Limits bounds a store. MaxBytes applies only to backends with a meaningful
// serialized size; zero disables a bound.
type Limits struct {
	MaxRecords int
	MaxBytes   int64
}

// Store is implemented by every backend.
type Store interface {
	Save(ctx context.Context, rec Record) (SaveStatus, error)
	Count(ctx context.Context) (int, error)
	Close() error
}
