package services_test

import (
	"testing"

	"wikigraph-backend/domain/core/aggregates"
	"wikigraph-backend/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSnapshotStats(t *testing.T) {
	// Arrange: A->B, A->C, C->B. Node A carries raw links that never became
	// edges; they must not count as connections.
	snap := &aggregates.Snapshot{
		Nodes: []aggregates.NodeRecord{
			{ID: "A", Content: "alpha content", Weight: 12, OutgoingLinkTitles: []string{"B", "C", "Never materialized"}},
			{ID: "B", Content: "b", Weight: 6},
			{ID: "C", Content: "gamma", Weight: 8},
		},
		Edges: []aggregates.EdgeRecord{
			{ID: "A->B", SourceID: "A", TargetID: "B"},
			{ID: "A->C", SourceID: "A", TargetID: "C"},
			{ID: "C->B", SourceID: "C", TargetID: "B"},
		},
	}

	// Act
	stats := services.NewGraphAnalyticsService().ComputeSnapshotStats(snap)

	// Assert
	assert.Equal(t, 3, stats.NodeCount)
	assert.Equal(t, 3, stats.EdgeCount)
	assert.Equal(t, 1, stats.RootCount)
	require.Len(t, stats.Nodes, 3)

	a := stats.Nodes[0]
	assert.Equal(t, "A", a.ID)
	assert.Equal(t, 0, a.IncomingConnections)
	assert.Equal(t, 2, a.OutgoingConnections)
	assert.True(t, a.IsRootNode)
	assert.Equal(t, len("alpha content"), a.ContentLength)
	assert.Equal(t, 12, a.NodeWeight)

	b := stats.Nodes[1]
	assert.Equal(t, 2, b.IncomingConnections)
	assert.Equal(t, 0, b.OutgoingConnections)
	assert.False(t, b.IsRootNode)

	c := stats.Nodes[2]
	assert.Equal(t, 1, c.IncomingConnections)
	assert.Equal(t, 1, c.OutgoingConnections)
	assert.False(t, c.IsRootNode)
}

func TestComputeSnapshotStats_EmptySnapshot(t *testing.T) {
	stats := services.NewGraphAnalyticsService().ComputeSnapshotStats(&aggregates.Snapshot{})

	assert.Equal(t, 0, stats.NodeCount)
	assert.Equal(t, 0, stats.RootCount)
	assert.Empty(t, stats.Nodes)
}
