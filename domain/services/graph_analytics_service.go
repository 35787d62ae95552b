package services

import (
	"wikigraph-backend/domain/core/aggregates"
)

// NodeStats summarizes a single node inside a finalized snapshot.
// Connection counts come from the committed edge set, never from the raw
// outgoing link list, since most raw links never became edges.
type NodeStats struct {
	ID                  string `json:"id"`
	IncomingConnections int    `json:"incomingConnections"`
	OutgoingConnections int    `json:"outgoingConnections"`
	IsRootNode          bool   `json:"isRootNode"`
	ContentLength       int    `json:"contentLength"`
	NodeWeight          int    `json:"nodeWeight"`
}

// SnapshotStats aggregates a snapshot for persistence and analytics display
type SnapshotStats struct {
	NodeCount int         `json:"nodeCount"`
	EdgeCount int         `json:"edgeCount"`
	RootCount int         `json:"rootCount"`
	Nodes     []NodeStats `json:"nodes"`
}

// GraphAnalyticsService derives per-node and snapshot-level statistics from
// a finalized snapshot at share time.
type GraphAnalyticsService struct{}

// NewGraphAnalyticsService creates a new analytics service
func NewGraphAnalyticsService() *GraphAnalyticsService {
	return &GraphAnalyticsService{}
}

// ComputeSnapshotStats computes statistics for every node in the snapshot,
// in stored node order.
func (s *GraphAnalyticsService) ComputeSnapshotStats(snap *aggregates.Snapshot) *SnapshotStats {
	incoming := make(map[string]int, len(snap.Nodes))
	outgoing := make(map[string]int, len(snap.Nodes))

	for _, edge := range snap.Edges {
		outgoing[edge.SourceID]++
		incoming[edge.TargetID]++
	}

	stats := &SnapshotStats{
		NodeCount: len(snap.Nodes),
		EdgeCount: len(snap.Edges),
		Nodes:     make([]NodeStats, 0, len(snap.Nodes)),
	}

	for _, node := range snap.Nodes {
		nodeStats := NodeStats{
			ID:                  node.ID,
			IncomingConnections: incoming[node.ID],
			OutgoingConnections: outgoing[node.ID],
			IsRootNode:          incoming[node.ID] == 0,
			ContentLength:       len(node.Content),
			NodeWeight:          node.Weight,
		}
		if nodeStats.IsRootNode {
			stats.RootCount++
		}
		stats.Nodes = append(stats.Nodes, nodeStats)
	}

	return stats
}
