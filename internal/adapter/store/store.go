package store

import (
	"context"
	"time"

	"go.ngs.io/bulletin-maps/internal/domain"
)

// FrameQuery selects frames from a ledger. Empty fields match everything.
type FrameQuery struct {
	Product string    // Product name, e.g. "sst".
	Date    string    // Valid date, YYYY-MM-DD.
	Since   time.Time // Frames valid at or after Since.
	Limit   int
}

// FrameLedger keeps track of the frames written by pipeline runs.
type FrameLedger interface {
	// Record stores one written frame. Recording the same product and name
	// again replaces the previous entry.
	Record(ctx context.Context, rec domain.FrameRecord) error

	// List returns the frames matching q ordered by valid time, then name.
	List(ctx context.Context, q FrameQuery) ([]domain.FrameRecord, error)

	// Close releases any resources held by the ledger.
	Close() error
}
