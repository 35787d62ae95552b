package services_test

import (
	"testing"

	"wikigraph-backend/domain/core/aggregates"
	"wikigraph-backend/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotOf(nodeIDs []string, edges [][2]string) *aggregates.Snapshot {
	snap := &aggregates.Snapshot{}
	for _, id := range nodeIDs {
		snap.Nodes = append(snap.Nodes, aggregates.NodeRecord{ID: id})
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

func stepOrder(replay *services.Replay) []string {
	var order []string
	for _, step := range replay.Steps() {
		order = append(order, step.Node.ID)
	}
	return order
}

func TestBFSSeeder_EmptySnapshot(t *testing.T) {
	replay := services.NewBFSSeeder().Seed(snapshotOf(nil, nil))

	assert.Equal(t, 0, replay.Len())
	_, ok := replay.Next()
	assert.False(t, ok)
}

func TestBFSSeeder_ChainEmitsInBFSOrder(t *testing.T) {
	snap := snapshotOf([]string{"A", "B", "C"}, [][2]string{{"A", "B"}, {"B", "C"}})

	replay := services.NewBFSSeeder().Seed(snap)

	assert.Equal(t, []string{"A", "B", "C"}, stepOrder(replay))
}

func TestBFSSeeder_EdgeAttachesAtSecondEndpoint(t *testing.T) {
	snap := snapshotOf([]string{"A", "B"}, [][2]string{{"A", "B"}})

	steps := services.NewBFSSeeder().Seed(snap).Steps()

	require.Len(t, steps, 2)
	assert.Empty(t, steps[0].Edges, "edge must not appear before both endpoints exist")
	require.Len(t, steps[1].Edges, 1)
	assert.Equal(t, "A->B", steps[1].Edges[0].ID)
}

func TestBFSSeeder_EveryNodeExactlyOnce_EveryEdgeExactlyOnce(t *testing.T) {
	snap := snapshotOf(
		[]string{"A", "B", "C", "D", "E"},
		[][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}, {"A", "D"}, {"D", "E"}, {"E", "B"}},
	)

	steps := services.NewBFSSeeder().Seed(snap).Steps()

	nodesSeen := make(map[string]int)
	edgesSeen := make(map[string]int)
	for _, step := range steps {
		nodesSeen[step.Node.ID]++
		for _, edge := range step.Edges {
			edgesSeen[edge.ID]++
		}
	}

	require.Len(t, nodesSeen, 5)
	for id, count := range nodesSeen {
		assert.Equal(t, 1, count, "node %s emitted more than once", id)
	}
	require.Len(t, edgesSeen, 6)
	for id, count := range edgesSeen {
		assert.Equal(t, 1, count, "edge %s attached more than once", id)
	}
}

func TestBFSSeeder_BackwardOnlyNodesAreReached(t *testing.T) {
	// C and D form a cycle feeding into B, so neither is a root and neither
	// is forward-reachable from A. Traversal must walk B's incoming edge
	// backward to pick them up.
	snap := snapshotOf(
		[]string{"A", "B", "C", "D"},
		[][2]string{{"A", "B"}, {"C", "B"}, {"D", "C"}, {"C", "D"}},
	)

	replay := services.NewBFSSeeder().Seed(snap)

	assert.ElementsMatch(t, []string{"A", "B", "C", "D"}, stepOrder(replay))
}

func TestBFSSeeder_FullyCyclicFallsBackToFirstNode(t *testing.T) {
	snap := snapshotOf([]string{"A", "B", "C"}, [][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}})

	order := stepOrder(services.NewBFSSeeder().Seed(snap))

	require.Len(t, order, 3)
	assert.Equal(t, "A", order[0], "rootless snapshot seeds from the first stored node")
}

func TestBFSSeeder_DisconnectedComponentsAllCovered(t *testing.T) {
	snap := snapshotOf(
		[]string{"A", "B", "X", "Y"},
		[][2]string{{"A", "B"}, {"X", "Y"}, {"Y", "X"}},
	)

	order := stepOrder(services.NewBFSSeeder().Seed(snap))

	assert.ElementsMatch(t, []string{"A", "B", "X", "Y"}, order)
}

func TestBFSSeeder_SelfLoopAttachesAtOwnStep(t *testing.T) {
	snap := snapshotOf([]string{"A"}, [][2]string{{"A", "A"}})

	steps := services.NewBFSSeeder().Seed(snap).Steps()

	require.Len(t, steps, 1)
	require.Len(t, steps[0].Edges, 1)
	assert.Equal(t, "A->A", steps[0].Edges[0].ID)
}

func TestBFSSeeder_DeterministicAcrossRuns(t *testing.T) {
	snap := snapshotOf(
		[]string{"A", "B", "C", "D"},
		[][2]string{{"A", "B"}, {"A", "C"}, {"C", "D"}},
	)
	seeder := services.NewBFSSeeder()

	first := stepOrder(seeder.Seed(snap))
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, stepOrder(seeder.Seed(snap)))
	}
}

func TestReplay_Restartable(t *testing.T) {
	snap := snapshotOf([]string{"A", "B"}, [][2]string{{"A", "B"}})
	replay := services.NewBFSSeeder().Seed(snap)

	first, ok := replay.Next()
	require.True(t, ok)

	for _, ok := replay.Next(); ok; _, ok = replay.Next() {
	}
	replay.Reset()

	again, ok := replay.Next()
	require.True(t, ok)
	assert.Equal(t, first.Node.ID, again.Node.ID)
}
