package services

import (
	"context"
	"sync"
	"time"

	"wikigraph-backend/application/ports"
	"wikigraph-backend/domain/config"
	"wikigraph-backend/domain/core/aggregates"
	"wikigraph-backend/domain/core/entities"
	"wikigraph-backend/domain/core/valueobjects"
	"wikigraph-backend/pkg/observability"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// LinkResult reports what a link operation did to the graph.
// AlreadyPresent marks the duplicate-mutation no-op: node and edge were both
// found, nothing changed, and the caller decides whether to move selection.
type LinkResult struct {
	Node            *entities.Node
	NodeCreated     bool
	Edge            *entities.Edge
	EdgeCreated     bool
	AlreadyPresent  bool
	DiscoveredEdges []*entities.Edge
}

// ExpandResult summarizes a bulk link materialization
type ExpandResult struct {
	NodesAdded  int
	EdgesAdded  int
	LinksFailed int
}

// LinkerService is the dedup/linking state machine behind every "follow a
// link" or "search an article" event. Resolution happens outside any lock
// (the fetch is the suspension point) and the subsequent existence checks are
// re-evaluated under commitMu against the latest graph state, so concurrent
// fetches for the same title converge onto one node and one edge no matter
// which completes first.
type LinkerService struct {
	graph    *aggregates.Graph
	resolver ports.ArticleResolver
	cfg      *config.DomainConfig
	logger   *zap.Logger
	metrics  *observability.Metrics

	// commitMu serializes every check-then-commit section
	commitMu sync.Mutex

	// flight collapses concurrent resolves of the same normalized query
	flight singleflight.Group

	// navigation history for back-navigation; guarded by histMu
	histMu    sync.Mutex
	history   []string
	currentID string
}

// NewLinkerService creates a new linker service
func NewLinkerService(
	graph *aggregates.Graph,
	resolver ports.ArticleResolver,
	cfg *config.DomainConfig,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *LinkerService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &LinkerService{
		graph:    graph,
		resolver: resolver,
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
	}
}

// NavigateTo resolves the query, links it into the graph from sourceID, and
// switches the current selection to the result, recording the source on the
// navigation history stack.
func (s *LinkerService) NavigateTo(ctx context.Context, sourceID, query string) (*LinkResult, error) {
	result, err := s.link(ctx, sourceID, query)
	if err != nil {
		return nil, err
	}

	s.histMu.Lock()
	if sourceID != "" && s.graph.HasNode(sourceID) {
		s.history = append(s.history, valueobjects.NormalizeTitle(sourceID))
	}
	s.currentID = result.Node.ID()
	s.histMu.Unlock()

	return result, nil
}

// Augment resolves the query and links it into the graph without touching
// the current selection or history. Background enrichment.
func (s *LinkerService) Augment(ctx context.Context, sourceID, query string) (*LinkResult, error) {
	return s.link(ctx, sourceID, query)
}

// Back pops the navigation history, returning the node navigated back to.
// Entries whose nodes were removed in the meantime are skipped.
func (s *LinkerService) Back() (string, bool) {
	s.histMu.Lock()
	defer s.histMu.Unlock()

	for len(s.history) > 0 {
		last := s.history[len(s.history)-1]
		s.history = s.history[:len(s.history)-1]
		if s.graph.HasNode(last) {
			s.currentID = last
			return last, true
		}
	}
	return "", false
}

// Current returns the currently selected node id, empty when none
func (s *LinkerService) Current() string {
	s.histMu.Lock()
	defer s.histMu.Unlock()
	return s.currentID
}

// RemoveNode cascades-removes a node and clears any selection or history
// entries that pointed at removed nodes.
func (s *LinkerService) RemoveNode(nodeID string) *aggregates.CascadeResult {
	s.commitMu.Lock()
	result := s.graph.RemoveNodeCascade(nodeID)
	s.commitMu.Unlock()

	if len(result.RemovedNodes) > 0 {
		removed := make(map[string]bool, len(result.RemovedNodes))
		for _, node := range result.RemovedNodes {
			removed[node.ID()] = true
		}

		s.histMu.Lock()
		kept := s.history[:0]
		for _, id := range s.history {
			if !removed[id] {
				kept = append(kept, id)
			}
		}
		s.history = kept
		if removed[s.currentID] {
			s.currentID = ""
		}
		s.histMu.Unlock()

		if s.metrics != nil {
			s.metrics.NodesRemoved.Add(float64(len(result.RemovedNodes)))
		}
	}

	s.logger.Info("removed node with cascade",
		zap.String("nodeID", nodeID),
		zap.Int("removedNodes", len(result.RemovedNodes)),
		zap.Int("removedEdges", len(result.RemovedEdges)),
	)

	return result
}

// ExpandNode bulk-materializes a node's substantive outgoing links into the
// graph with bounded parallelism, then raises the expanded flag. Links that
// resolve to missing pages are skipped, not errors.
func (s *LinkerService) ExpandNode(ctx context.Context, nodeID string) (*ExpandResult, error) {
	node, err := s.graph.GetNode(nodeID)
	if err != nil {
		return nil, err
	}

	links := valueobjects.FilterSubstantiveLinks(node.OutgoingLinkTitles())
	if len(links) > s.cfg.MaxLinksPerExpand {
		links = links[:s.cfg.MaxLinksPerExpand]
	}

	result := &ExpandResult{}
	var resultMu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.cfg.ExpandConcurrency)

	for _, link := range links {
		link := link
		group.Go(func() error {
			linkResult, err := s.link(groupCtx, node.ID(), link)
			resultMu.Lock()
			defer resultMu.Unlock()
			if err != nil {
				result.LinksFailed++
				s.logger.Debug("expand link failed",
					zap.String("nodeID", node.ID()),
					zap.String("link", link),
					zap.Error(err),
				)
				return nil // one bad link never aborts the expand
			}
			if linkResult.NodeCreated {
				result.NodesAdded++
			}
			if linkResult.EdgeCreated {
				result.EdgesAdded++
			}
			result.EdgesAdded += len(linkResult.DiscoveredEdges)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	s.graph.MarkNodeExpanded(node.ID())

	s.logger.Info("expanded node",
		zap.String("nodeID", node.ID()),
		zap.Int("nodesAdded", result.NodesAdded),
		zap.Int("edgesAdded", result.EdgesAdded),
		zap.Int("linksFailed", result.LinksFailed),
	)

	return result, nil
}

// link is the shared path behind NavigateTo and Augment: resolve the query,
// then re-check node and edge existence against the live graph and commit.
func (s *LinkerService) link(ctx context.Context, sourceID, query string) (*LinkResult, error) {
	parsed := valueobjects.ParseQuery(query)
	if parsed == "" {
		return nil, errEmptyQuery()
	}

	resolved, err := s.resolve(ctx, parsed)
	if err != nil {
		// Fetch failures propagate unmutated; the graph is exactly as it was.
		return nil, err
	}

	canonical := valueobjects.NormalizeTitle(resolved.CanonicalTitle)
	if sourceID != "" {
		sourceID = valueobjects.NormalizeTitle(sourceID)
	}

	// Commit section: everything below re-validates against current state,
	// not the state from before the fetch suspension.
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	result := &LinkResult{}

	nodeExists := s.graph.HasNode(canonical)
	edgeWanted := sourceID != "" // self-links are legitimate when reported
	edgeExists := edgeWanted && s.graph.HasEdge(sourceID, canonical)

	switch {
	case nodeExists && (!edgeWanted || edgeExists):
		// Case A: fully present, no mutation. Selection is the caller's call.
		node, err := s.graph.GetNode(canonical)
		if err != nil {
			return nil, err
		}
		result.Node = node
		result.AlreadyPresent = true
		if s.metrics != nil {
			s.metrics.DuplicateNoops.Inc()
		}

	case nodeExists:
		// Case B: node known, edge newly observed.
		node, err := s.graph.GetNode(canonical)
		if err != nil {
			return nil, err
		}
		result.Node = node
		result.Edge, result.EdgeCreated, err = s.commitEdge(sourceID, canonical)
		if err != nil {
			return nil, err
		}

	default:
		// Case C: new node, then the edge, then bidirectional discovery.
		node, created, err := s.graph.UpsertNode(entities.ArticleData{
			CanonicalTitle:     resolved.CanonicalTitle,
			Content:            resolved.Content,
			FullDocument:       resolved.FullDocument,
			SourceURL:          resolved.SourceURL,
			OutgoingLinkTitles: resolved.LinkTitles(),
		})
		if err != nil {
			return nil, err
		}
		result.Node = node
		result.NodeCreated = created
		if s.metrics != nil && created {
			s.metrics.NodesCreated.Inc()
		}

		if edgeWanted {
			result.Edge, result.EdgeCreated, err = s.commitEdge(sourceID, canonical)
			if err != nil {
				return nil, err
			}
		}

		result.DiscoveredEdges = s.discoverBidirectional(node)
	}

	return result, nil
}

// commitEdge inserts the edge unless the source vanished mid-fetch, in which
// case the edge is skipped: a deliberately deleted node is never resurrected
// by a stale completion, and the graph never gains a dangling edge.
func (s *LinkerService) commitEdge(sourceID, targetID string) (*entities.Edge, bool, error) {
	if !s.graph.HasNode(sourceID) {
		s.logger.Warn("edge source removed mid-fetch, skipping edge",
			zap.String("sourceID", sourceID),
			zap.String("targetID", targetID),
		)
		return nil, false, nil
	}

	edge, err := s.graph.AddEdgeIfAbsent(sourceID, targetID)
	if err != nil {
		return nil, false, err
	}
	if edge == nil {
		return nil, false, nil
	}
	if s.metrics != nil {
		s.metrics.EdgesCreated.Inc()
	}
	return edge, true, nil
}

// discoverBidirectional scans every existing node against the new one in
// both directions. O(N) per new node; exploration graphs stay small, and
// the link lists are best-effort signals either way.
func (s *LinkerService) discoverBidirectional(newNode *entities.Node) []*entities.Edge {
	var discovered []*entities.Edge

	for _, other := range s.graph.Nodes() {
		if other.ID() == newNode.ID() {
			continue
		}

		if newNode.HasLinkTo(other.Title()) {
			if edge, err := s.graph.AddEdgeIfAbsent(newNode.ID(), other.ID()); err == nil && edge != nil {
				discovered = append(discovered, edge)
			}
		}
		if other.HasLinkTo(newNode.Title()) {
			if edge, err := s.graph.AddEdgeIfAbsent(other.ID(), newNode.ID()); err == nil && edge != nil {
				discovered = append(discovered, edge)
			}
		}
	}

	if s.metrics != nil && len(discovered) > 0 {
		s.metrics.EdgesCreated.Add(float64(len(discovered)))
	}

	return discovered
}

// resolve collapses concurrent identical fetches through singleflight
func (s *LinkerService) resolve(ctx context.Context, parsed string) (*ports.ResolvedArticle, error) {
	start := time.Now()

	value, err, _ := s.flight.Do(parsed, func() (interface{}, error) {
		return s.resolver.Resolve(ctx, parsed)
	})

	if s.metrics != nil {
		s.metrics.ResolveDuration.Observe(time.Since(start).Seconds())
	}

	if err != nil {
		if s.metrics != nil {
			s.metrics.ResolveFailures.WithLabelValues(failureKind(err)).Inc()
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ArticlesResolved.Inc()
	}
	return value.(*ports.ResolvedArticle), nil
}
