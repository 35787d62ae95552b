package memory

import (
	"context"
	"sync"

	"wikigraph-backend/application/ports"
	"wikigraph-backend/domain/core/entities"
	pkgerrors "wikigraph-backend/pkg/errors"
)

// ArticleStatsRepository keeps the cross-snapshot running aggregates in
// memory. Updates are online increments; the average is derived from the
// two counters, never recomputed over history.
type ArticleStatsRepository struct {
	mu       sync.RWMutex
	articles map[string]*ports.ArticleStats
	links    map[string]*ports.LinkStats
}

// NewArticleStatsRepository creates a new in-memory stats repository
func NewArticleStatsRepository() *ArticleStatsRepository {
	return &ArticleStatsRepository{
		articles: make(map[string]*ports.ArticleStats),
		links:    make(map[string]*ports.LinkStats),
	}
}

// RecordAppearance bumps the article's counters and running average
func (r *ArticleStatsRepository) RecordAppearance(ctx context.Context, title string, connections int) (*ports.ArticleStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.articles[title]
	if !ok {
		stats = &ports.ArticleStats{Title: title}
		r.articles[title] = stats
	}

	stats.TotalAppearances++
	stats.TotalConnections += int64(connections)
	stats.AverageConnections = float64(stats.TotalConnections) / float64(stats.TotalAppearances)

	copied := *stats
	return &copied, nil
}

// RecordLinkOccurrence bumps the ordered pair's counter
func (r *ArticleStatsRepository) RecordLinkOccurrence(ctx context.Context, sourceID, targetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := entities.EdgeID(sourceID, targetID)
	stats, ok := r.links[key]
	if !ok {
		stats = &ports.LinkStats{SourceID: sourceID, TargetID: targetID}
		r.links[key] = stats
	}
	stats.Occurrences++
	return nil
}

// GetArticleStats reads the current aggregate for a title
func (r *ArticleStatsRepository) GetArticleStats(ctx context.Context, title string) (*ports.ArticleStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats, ok := r.articles[title]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("article stats")
	}
	copied := *stats
	return &copied, nil
}

// GetLinkStats reads the current counter for an ordered pair
func (r *ArticleStatsRepository) GetLinkStats(ctx context.Context, sourceID, targetID string) (*ports.LinkStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats, ok := r.links[entities.EdgeID(sourceID, targetID)]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("link stats")
	}
	copied := *stats
	return &copied, nil
}

var _ ports.ArticleStatsRepository = (*ArticleStatsRepository)(nil)
