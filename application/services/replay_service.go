package services

import (
	"context"
	"sync"
	"time"

	"wikigraph-backend/domain/core/aggregates"
	"wikigraph-backend/domain/core/entities"
	domainservices "wikigraph-backend/domain/services"

	"go.uber.org/zap"
)

// ReplayService drives progressive reconstruction of a loaded snapshot: it
// pulls BFS steps on a fixed cadence and applies them to the live graph.
// A new Load supersedes any in-flight replay; the superseded replay's
// remaining steps are discarded, never applied late.
type ReplayService struct {
	graph  *aggregates.Graph
	seeder *domainservices.BFSSeeder
	logger *zap.Logger

	stepDelay time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewReplayService creates a new replay service. A non-positive stepDelay
// applies the whole snapshot synchronously.
func NewReplayService(
	graph *aggregates.Graph,
	seeder *domainservices.BFSSeeder,
	stepDelay time.Duration,
	logger *zap.Logger,
) *ReplayService {
	return &ReplayService{
		graph:     graph,
		seeder:    seeder,
		stepDelay: stepDelay,
		logger:    logger,
	}
}

// Load replaces the session graph with the snapshot's content, replayed in
// BFS order. Any replay already in flight is cancelled and drained first.
func (s *ReplayService) Load(ctx context.Context, snap *aggregates.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()

	s.graph.Clear()
	replay := s.seeder.Seed(snap)

	s.logger.Info("starting snapshot replay",
		zap.String("snapshotID", snap.ID),
		zap.Int("steps", replay.Len()),
		zap.Duration("stepDelay", s.stepDelay),
	)

	if s.stepDelay <= 0 {
		for step, ok := replay.Next(); ok; step, ok = replay.Next() {
			s.applyStep(step)
		}
		return nil
	}

	// The replay outlives the triggering request: HTTP request contexts die
	// as soon as the handler returns, so the worker gets a service-owned
	// context and stops only via Cancel or supersession.
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go s.run(runCtx, replay, done)

	return nil
}

// Cancel stops any in-flight replay and waits for it to drain
func (s *ReplayService) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

func (s *ReplayService) cancelLocked() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
		s.cancel = nil
		s.done = nil
	}
}

func (s *ReplayService) run(ctx context.Context, replay *domainservices.Replay, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.stepDelay)
	defer ticker.Stop()

	applied := 0
	for {
		step, ok := replay.Next()
		if !ok {
			s.logger.Info("snapshot replay complete", zap.Int("steps", applied))
			return
		}

		select {
		case <-ctx.Done():
			s.logger.Info("snapshot replay superseded",
				zap.Int("applied", applied),
				zap.Int("discarded", replay.Len()-applied),
			)
			return
		case <-ticker.C:
			s.applyStep(step)
			applied++
		}
	}
}

// applyStep upserts the step's node and inserts its now-satisfied edges.
// Both operations are idempotent, so a re-applied step converges.
func (s *ReplayService) applyStep(step domainservices.ReplayStep) {
	_, _, err := s.graph.UpsertNode(entities.ArticleData{
		CanonicalTitle:     step.Node.ID,
		Content:            step.Node.Content,
		FullDocument:       step.Node.FullDocument,
		SourceURL:          step.Node.SourceURL,
		OutgoingLinkTitles: step.Node.OutgoingLinkTitles,
	})
	if err != nil {
		s.logger.Error("replay step failed to upsert node",
			zap.String("nodeID", step.Node.ID),
			zap.Error(err),
		)
		return
	}
	if step.Node.Expanded {
		s.graph.MarkNodeExpanded(step.Node.ID)
	}

	for _, record := range step.Edges {
		if _, err := s.graph.AddEdgeIfAbsent(record.SourceID, record.TargetID); err != nil {
			s.logger.Error("replay step failed to add edge",
				zap.String("edgeID", record.ID),
				zap.Error(err),
			)
		}
	}
}
