package database

import (
	"context"
	"time"
)

// Timeouts for repository calls.
const (
	// ShortTimeout for single-document reads and writes
	ShortTimeout = 5 * time.Second

	// MediumTimeout for queries returning many documents
	MediumTimeout = 10 * time.Second

	// LongTimeout for bulk replacement of a whole table
	LongTimeout = 60 * time.Second
)

// WithShortTimeout creates a context with ShortTimeout
func WithShortTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), ShortTimeout)
}

// WithMediumTimeout creates a context with MediumTimeout
func WithMediumTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), MediumTimeout)
}

// WithLongTimeout bounds ctx by LongTimeout
func WithLongTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, LongTimeout)
}
