package memory

import (
	"errors"
	"time"
)

// Sentinel errors for the memory engine.
var (
	ErrEmptyContent       = errors.New("memory: content is empty")
	ErrStorageUnavailable = errors.New("memory: storage unavailable")
	ErrNotFound           = errors.New("memory: entry not found")
)

// Retention and session constants. The persisted cap and the working-set
// caps are deliberately different: the working set is trimmed harder on
// each write, the persisted collection only at save time.
const (
	// PersistedCap is the maximum number of entries kept in storage.
	PersistedCap = 50

	// WorkingCapHigh is the working-set size that triggers trimming.
	WorkingCapHigh = 40

	// WorkingCapLow is the working-set size retained after trimming.
	WorkingCapLow = 35

	// SessionWindow is the maximum gap between writes that keeps a
	// session alive. A larger gap mints a new session ID.
	SessionWindow = 30 * time.Minute

	// ConsolidationWindow bounds how far back the ingestion pipeline
	// looks for a near-duplicate to merge into.
	ConsolidationWindow = 30 * time.Minute

	// ConsolidationThreshold is the word-overlap similarity above which
	// new content is merged into an existing recent entry.
	ConsolidationThreshold = 0.7

	// ContinuationMarker joins consolidated content fragments.
	ContinuationMarker = "\n\n[Continued]\n\n"
)
