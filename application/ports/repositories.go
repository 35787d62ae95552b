package ports

import (
	"context"

	"wikigraph-backend/domain/core/aggregates"
)

// SnapshotRepository persists shared graph snapshots. Snapshots are
// immutable once written except for view count and expiry metadata, which
// only ever move forward.
type SnapshotRepository interface {
	// Save assigns the snapshot an id and expiry and persists it
	Save(ctx context.Context, snap *aggregates.Snapshot) (*aggregates.Snapshot, error)

	// Load retrieves a snapshot; missing or expired ids yield NotFoundError
	Load(ctx context.Context, id string) (*aggregates.Snapshot, error)

	// RecordView increments the view counter and extends the expiry
	RecordView(ctx context.Context, id string) error

	// Delete removes a snapshot
	Delete(ctx context.Context, id string) error
}

// ArticleStats carries the running cross-snapshot aggregates for one
// canonical article title.
type ArticleStats struct {
	Title              string  `json:"title"`
	TotalAppearances   int64   `json:"totalAppearances"`
	TotalConnections   int64   `json:"totalConnections"`
	AverageConnections float64 `json:"averageConnections"`
}

// LinkStats is the running occurrence counter for one ordered
// (source, target) pair across all snapshots.
type LinkStats struct {
	SourceID    string `json:"sourceId"`
	TargetID    string `json:"targetId"`
	Occurrences int64  `json:"occurrences"`
}

// ArticleStatsRepository maintains cross-snapshot aggregates as online
// running updates: an increment per share, never a recomputation over the
// full share history.
type ArticleStatsRepository interface {
	// RecordAppearance bumps totalAppearances by one and totalConnections by
	// the node's incoming+outgoing count, returning the updated aggregate
	// with its recomputed running average.
	RecordAppearance(ctx context.Context, title string, connections int) (*ArticleStats, error)

	// RecordLinkOccurrence bumps the counter for the ordered pair
	RecordLinkOccurrence(ctx context.Context, sourceID, targetID string) error

	// GetArticleStats reads the current aggregate for a title
	GetArticleStats(ctx context.Context, title string) (*ArticleStats, error)

	// GetLinkStats reads the current counter for an ordered pair
	GetLinkStats(ctx context.Context, sourceID, targetID string) (*LinkStats, error)
}
