package services_test

import (
	"context"
	"testing"
	"time"

	"wikigraph-backend/application/services"
	"wikigraph-backend/domain/config"
	"wikigraph-backend/domain/core/aggregates"
	"wikigraph-backend/domain/core/entities"
	domainservices "wikigraph-backend/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func replaySnapshot(nodeIDs []string, edges [][2]string) *aggregates.Snapshot {
	snap := &aggregates.Snapshot{ID: "snap-1"}
	for _, id := range nodeIDs {
		snap.Nodes = append(snap.Nodes, aggregates.NodeRecord{
			ID:      id,
			Content: "content of " + id,
		})
	}
	for _, pair := range edges {
		snap.Edges = append(snap.Edges, aggregates.EdgeRecord{
			ID:       pair[0] + "->" + pair[1],
			SourceID: pair[0],
			TargetID: pair[1],
		})
	}
	return snap
}

func TestReplay_SynchronousLoad(t *testing.T) {
	graph := aggregates.NewGraph(config.DefaultDomainConfig())
	replay := services.NewReplayService(graph, domainservices.NewBFSSeeder(), 0, zap.NewNop())
	snap := replaySnapshot([]string{"A", "B", "C"}, [][2]string{{"A", "B"}, {"B", "C"}})

	err := replay.Load(context.Background(), snap)

	require.NoError(t, err)
	assert.Equal(t, 3, graph.NodeCount())
	assert.Equal(t, 2, graph.EdgeCount())
	assert.True(t, graph.HasEdge("A", "B"))
	assert.True(t, graph.HasEdge("B", "C"))
}

func TestReplay_LoadReplacesExistingGraph(t *testing.T) {
	graph := aggregates.NewGraph(config.DefaultDomainConfig())
	_, _, err := graph.UpsertNode(entities.ArticleData{CanonicalTitle: "Old Node"})
	require.NoError(t, err)

	replay := services.NewReplayService(graph, domainservices.NewBFSSeeder(), 0, zap.NewNop())
	err = replay.Load(context.Background(), replaySnapshot([]string{"A"}, nil))

	require.NoError(t, err)
	assert.False(t, graph.HasNode("Old Node"))
	assert.True(t, graph.HasNode("A"))
}

func TestReplay_InvalidSnapshotRejectedBeforeClearing(t *testing.T) {
	graph := aggregates.NewGraph(config.DefaultDomainConfig())
	_, _, err := graph.UpsertNode(entities.ArticleData{CanonicalTitle: "Survivor"})
	require.NoError(t, err)

	replay := services.NewReplayService(graph, domainservices.NewBFSSeeder(), 0, zap.NewNop())
	bad := replaySnapshot([]string{"A"}, [][2]string{{"A", "Missing"}})

	err = replay.Load(context.Background(), bad)

	assert.Error(t, err)
	assert.True(t, graph.HasNode("Survivor"), "a rejected snapshot must not wipe the session")
}

func TestReplay_PacedLoadCompletes(t *testing.T) {
	graph := aggregates.NewGraph(config.DefaultDomainConfig())
	replay := services.NewReplayService(graph, domainservices.NewBFSSeeder(), 2*time.Millisecond, zap.NewNop())
	snap := replaySnapshot([]string{"A", "B", "C", "D"}, [][2]string{{"A", "B"}, {"B", "C"}, {"C", "D"}})

	err := replay.Load(context.Background(), snap)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return graph.NodeCount() == 4 && graph.EdgeCount() == 3
	}, 2*time.Second, 5*time.Millisecond)
}

func TestReplay_PacedLoadSurvivesCallerCancel(t *testing.T) {
	graph := aggregates.NewGraph(config.DefaultDomainConfig())
	replay := services.NewReplayService(graph, domainservices.NewBFSSeeder(), 2*time.Millisecond, zap.NewNop())
	snap := replaySnapshot(
		[]string{"A", "B", "C", "D", "E"},
		[][2]string{{"A", "B"}, {"B", "C"}, {"C", "D"}, {"D", "E"}},
	)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, replay.Load(ctx, snap))

	// An HTTP request context dies the moment the handler returns; the
	// replay belongs to the service and must keep applying steps anyway.
	cancel()

	require.Eventually(t, func() bool {
		return graph.NodeCount() == 5 && graph.EdgeCount() == 4
	}, 2*time.Second, 5*time.Millisecond)
}

func TestReplay_SnapshotReadsDuringLoad(t *testing.T) {
	graph := aggregates.NewGraph(config.DefaultDomainConfig())
	replay := services.NewReplayService(graph, domainservices.NewBFSSeeder(), 0, zap.NewNop())

	snap := replaySnapshot([]string{"A", "B", "C"}, [][2]string{{"A", "B"}})
	for i := range snap.Nodes {
		snap.Nodes[i].Expanded = true
	}

	// Concurrent snapshot captures while replays raise the expanded flag;
	// every entity write must happen under the graph's write lock.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			graph.Snapshot()
		}
	}()

	for i := 0; i < 20; i++ {
		require.NoError(t, replay.Load(context.Background(), snap))
	}
	<-done

	node, err := graph.GetNode("A")
	require.NoError(t, err)
	assert.True(t, node.Expanded())
}

func TestReplay_NewLoadSupersedesInFlight(t *testing.T) {
	graph := aggregates.NewGraph(config.DefaultDomainConfig())
	replay := services.NewReplayService(graph, domainservices.NewBFSSeeder(), 20*time.Millisecond, zap.NewNop())

	first := replaySnapshot([]string{"A", "B", "C", "D", "E"}, nil)
	second := replaySnapshot([]string{"X", "Y"}, [][2]string{{"X", "Y"}})

	require.NoError(t, replay.Load(context.Background(), first))
	require.NoError(t, replay.Load(context.Background(), second))

	require.Eventually(t, func() bool {
		return graph.HasNode("X") && graph.HasNode("Y")
	}, 2*time.Second, 5*time.Millisecond)

	// Nothing from the superseded replay may apply late
	assert.False(t, graph.HasNode("A"))
	assert.Equal(t, 2, graph.NodeCount())
}

func TestReplay_CancelStopsApplication(t *testing.T) {
	graph := aggregates.NewGraph(config.DefaultDomainConfig())
	replay := services.NewReplayService(graph, domainservices.NewBFSSeeder(), 50*time.Millisecond, zap.NewNop())
	snap := replaySnapshot([]string{"A", "B", "C", "D", "E"}, nil)

	require.NoError(t, replay.Load(context.Background(), snap))
	replay.Cancel()

	// Cancel drains the worker, so the count is final
	frozen := graph.NodeCount()
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, frozen, graph.NodeCount())
	assert.Less(t, frozen, 5)
}
