// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces front-ends call into.
package primary

import (
	"context"
	"time"
)

// WarSyncService defines the primary port for war synchronization.
type WarSyncService interface {
	// SyncWar ingests the remote war if it is newer than the latest on record.
	// A war that hasn't advanced is reported as skipped, not as an error.
	SyncWar(ctx context.Context) (*SyncResult, error)

	// ExecuteColdStart ensures the schema and icon codebook, then syncs.
	// Safe to call repeatedly.
	ExecuteColdStart(ctx context.Context) (*SyncResult, error)
}

// SyncResult describes one sync attempt.
type SyncResult struct {
	RunID       string
	WarNumber   int // war reported by the data source
	PreviousWar int // latest war on record before the attempt
	HadBaseline bool
	Skipped     bool
	Maps        int
	Labels      int
	Icons       int
	FetchedAt   time.Time
	Duration    time.Duration
}
