package services

import (
	"context"

	"wikigraph-backend/application/ports"
	"wikigraph-backend/domain/core/aggregates"
	domainservices "wikigraph-backend/domain/services"
	pkgerrors "wikigraph-backend/pkg/errors"
	"wikigraph-backend/pkg/observability"

	"go.uber.org/zap"
)

// ShareService persists graph snapshots for sharing and forking, and feeds
// the cross-snapshot analytics aggregates on every share.
type ShareService struct {
	graph     *aggregates.Graph
	snapshots ports.SnapshotRepository
	stats     ports.ArticleStatsRepository
	analytics *domainservices.GraphAnalyticsService
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// NewShareService creates a new share service
func NewShareService(
	graph *aggregates.Graph,
	snapshots ports.SnapshotRepository,
	stats ports.ArticleStatsRepository,
	analytics *domainservices.GraphAnalyticsService,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *ShareService {
	return &ShareService{
		graph:     graph,
		snapshots: snapshots,
		stats:     stats,
		analytics: analytics,
		logger:    logger,
		metrics:   metrics,
	}
}

// Share materializes the session graph into a snapshot, persists it, and
// folds its statistics into the running cross-snapshot aggregates.
func (s *ShareService) Share(ctx context.Context, title, creatorName, description string) (*aggregates.Snapshot, error) {
	if s.graph.NodeCount() == 0 {
		return nil, pkgerrors.NewValidationError("cannot share an empty graph")
	}

	snap := s.graph.Snapshot()
	snap.Title = title
	snap.CreatorName = creatorName
	snap.Description = description

	if err := snap.Validate(); err != nil {
		return nil, err
	}

	saved, err := s.snapshots.Save(ctx, snap)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.SnapshotsShared.Inc()
	}

	s.recordAggregates(ctx, saved)

	s.logger.Info("shared snapshot",
		zap.String("snapshotID", saved.ID),
		zap.Int("nodes", len(saved.Nodes)),
		zap.Int("edges", len(saved.Edges)),
	)

	return saved, nil
}

// Load retrieves a shared snapshot and records the view; the view counter is
// a monotonic increment, so a failed bump is logged, not fatal.
func (s *ShareService) Load(ctx context.Context, id string) (*aggregates.Snapshot, error) {
	snap, err := s.snapshots.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.snapshots.RecordView(ctx, id); err != nil {
		s.logger.Warn("failed to record snapshot view",
			zap.String("snapshotID", id),
			zap.Error(err),
		)
	}

	return snap, nil
}

// Fork clones an existing snapshot verbatim under a new identity. The source
// is already consistent, so nodes and edges are copied without any
// resolution or dedup re-run.
func (s *ShareService) Fork(ctx context.Context, id, title, creatorName, description string) (*aggregates.Snapshot, error) {
	source, err := s.snapshots.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	fork := source.Fork(title, creatorName, description)
	if err := fork.Validate(); err != nil {
		return nil, err
	}

	saved, err := s.snapshots.Save(ctx, fork)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.SnapshotsShared.Inc()
	}

	s.recordAggregates(ctx, saved)

	s.logger.Info("forked snapshot",
		zap.String("sourceID", id),
		zap.String("snapshotID", saved.ID),
	)

	return saved, nil
}

// ArticleStats reads the running aggregate for a canonical title
func (s *ShareService) ArticleStats(ctx context.Context, title string) (*ports.ArticleStats, error) {
	return s.stats.GetArticleStats(ctx, title)
}

// SnapshotStats computes the per-node statistics of a stored snapshot
func (s *ShareService) SnapshotStats(ctx context.Context, id string) (*domainservices.SnapshotStats, error) {
	snap, err := s.snapshots.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.analytics.ComputeSnapshotStats(snap), nil
}

// recordAggregates fans the snapshot's statistics out into the running
// cross-snapshot aggregates. The share itself already persisted; aggregate
// failures degrade to log lines.
func (s *ShareService) recordAggregates(ctx context.Context, snap *aggregates.Snapshot) {
	stats := s.analytics.ComputeSnapshotStats(snap)

	for _, node := range stats.Nodes {
		connections := node.IncomingConnections + node.OutgoingConnections
		if _, err := s.stats.RecordAppearance(ctx, node.ID, connections); err != nil {
			s.logger.Warn("failed to record article appearance",
				zap.String("title", node.ID),
				zap.Error(err),
			)
		}
	}

	for _, edge := range snap.Edges {
		if err := s.stats.RecordLinkOccurrence(ctx, edge.SourceID, edge.TargetID); err != nil {
			s.logger.Warn("failed to record link occurrence",
				zap.String("edgeID", edge.ID),
				zap.Error(err),
			)
		}
	}
}
