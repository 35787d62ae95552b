package aggregates_test

import (
	"testing"

	"wikigraph-backend/domain/config"
	"wikigraph-backend/domain/core/aggregates"
	"wikigraph-backend/domain/core/entities"
	pkgerrors "wikigraph-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGraph(t *testing.T) *aggregates.Graph {
	t.Helper()
	return aggregates.NewGraph(config.DefaultDomainConfig())
}

func addNode(t *testing.T, g *aggregates.Graph, title string, links ...string) *entities.Node {
	t.Helper()
	node, _, err := g.UpsertNode(entities.ArticleData{
		CanonicalTitle:     title,
		Content:            "content of " + title,
		OutgoingLinkTitles: links,
	})
	require.NoError(t, err)
	return node
}

func addEdge(t *testing.T, g *aggregates.Graph, source, target string) {
	t.Helper()
	edge, err := g.AddEdgeIfAbsent(source, target)
	require.NoError(t, err)
	require.NotNil(t, edge)
}

func TestGraph_MarkNodeExpanded(t *testing.T) {
	g := newTestGraph(t)
	node := addNode(t, g, "Albert Einstein")
	require.False(t, node.Expanded())

	require.True(t, g.MarkNodeExpanded("Albert_Einstein"))
	assert.True(t, node.Expanded())
	version := node.Version()

	// Marking again is a no-op, the flag only ever rises
	require.True(t, g.MarkNodeExpanded("Albert Einstein"))
	assert.Equal(t, version, node.Version())

	assert.False(t, g.MarkNodeExpanded("Missing"))
}

func TestGraph_UpsertNode_DedupsByCanonicalTitle(t *testing.T) {
	g := newTestGraph(t)

	first, created, err := g.UpsertNode(entities.ArticleData{CanonicalTitle: "Albert Einstein"})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := g.UpsertNode(entities.ArticleData{
		CanonicalTitle: "Albert_Einstein",
		Content:        "refetched content",
	})
	require.NoError(t, err)

	assert.False(t, created)
	assert.Same(t, first, second)
	assert.Equal(t, 1, g.NodeCount())
	assert.Equal(t, "refetched content", first.Content())
}

func TestGraph_AddEdgeIfAbsent_Idempotent(t *testing.T) {
	g := newTestGraph(t)
	addNode(t, g, "A")
	addNode(t, g, "B")

	edge, err := g.AddEdgeIfAbsent("A", "B")
	require.NoError(t, err)
	require.NotNil(t, edge)

	dup, err := g.AddEdgeIfAbsent("A", "B")
	require.NoError(t, err)

	assert.Nil(t, dup)
	assert.Equal(t, 1, g.EdgeCount())
}

func TestGraph_AddEdge_OppositeDirectionIsDistinct(t *testing.T) {
	g := newTestGraph(t)
	addNode(t, g, "A")
	addNode(t, g, "B")
	addEdge(t, g, "A", "B")

	reverse, err := g.AddEdgeIfAbsent("B", "A")
	require.NoError(t, err)

	assert.NotNil(t, reverse)
	assert.Equal(t, 2, g.EdgeCount())
}

func TestGraph_AddEdge_MissingEndpointFails(t *testing.T) {
	g := newTestGraph(t)
	addNode(t, g, "A")

	_, err := g.AddEdgeIfAbsent("A", "Missing")

	assert.Error(t, err)
	assert.True(t, pkgerrors.IsDanglingReference(err))
	assert.Equal(t, 0, g.EdgeCount())
}

func TestGraph_SelfLoopAllowed(t *testing.T) {
	g := newTestGraph(t)
	addNode(t, g, "Recursion")

	edge, err := g.AddEdgeIfAbsent("Recursion", "Recursion")
	require.NoError(t, err)

	assert.NotNil(t, edge)
	assert.Equal(t, 1, g.EdgeCount())
}

func TestGraph_RootNodes(t *testing.T) {
	g := newTestGraph(t)
	addNode(t, g, "A")
	addNode(t, g, "B")
	addNode(t, g, "C")
	addEdge(t, g, "A", "B")
	addEdge(t, g, "C", "B")

	roots := g.RootNodes()

	require.Len(t, roots, 2)
	assert.Equal(t, "A", roots[0].ID())
	assert.Equal(t, "C", roots[1].ID())
}

func TestGraph_RemoveNodeCascade_OrphansFollow(t *testing.T) {
	// A->B->C and A->D: removing B must also remove C, while D survives.
	g := newTestGraph(t)
	addNode(t, g, "A")
	addNode(t, g, "B")
	addNode(t, g, "C")
	addNode(t, g, "D")
	addEdge(t, g, "A", "B")
	addEdge(t, g, "B", "C")
	addEdge(t, g, "A", "D")

	result := g.RemoveNodeCascade("B")

	removedIDs := make([]string, 0, len(result.RemovedNodes))
	for _, node := range result.RemovedNodes {
		removedIDs = append(removedIDs, node.ID())
	}
	assert.ElementsMatch(t, []string{"B", "C"}, removedIDs)
	assert.True(t, g.HasNode("A"))
	assert.True(t, g.HasNode("D"))
	assert.False(t, g.HasNode("B"))
	assert.False(t, g.HasNode("C"))
	assert.Equal(t, 1, g.EdgeCount())
	assert.True(t, g.HasEdge("A", "D"))
}

func TestGraph_RemoveNodeCascade_RemovingRootTakesComponent(t *testing.T) {
	g := newTestGraph(t)
	addNode(t, g, "A")
	addNode(t, g, "B")
	addNode(t, g, "C")
	addEdge(t, g, "A", "B")
	addEdge(t, g, "B", "C")

	result := g.RemoveNodeCascade("A")

	assert.Len(t, result.RemovedNodes, 3)
	assert.Equal(t, 0, g.NodeCount())
	assert.Equal(t, 0, g.EdgeCount())
}

func TestGraph_RemoveNodeCascade_OrphanCannotPromoteItself(t *testing.T) {
	// C is reachable only through B. After removing B, C briefly has zero
	// incoming edges, but the pre-removal root set does not include it, so it
	// must not survive as a self-promoted root.
	g := newTestGraph(t)
	addNode(t, g, "A")
	addNode(t, g, "B")
	addNode(t, g, "C")
	addEdge(t, g, "A", "B")
	addEdge(t, g, "B", "C")

	g.RemoveNodeCascade("B")

	assert.False(t, g.HasNode("C"))
	assert.True(t, g.HasNode("A"))
}

func TestGraph_RemoveNodeCascade_SurvivorKeptByOtherPath(t *testing.T) {
	// Diamond: A->B, A->C, B->D, C->D. Removing B keeps D alive through C.
	g := newTestGraph(t)
	addNode(t, g, "A")
	addNode(t, g, "B")
	addNode(t, g, "C")
	addNode(t, g, "D")
	addEdge(t, g, "A", "B")
	addEdge(t, g, "A", "C")
	addEdge(t, g, "B", "D")
	addEdge(t, g, "C", "D")

	result := g.RemoveNodeCascade("B")

	assert.Len(t, result.RemovedNodes, 1)
	assert.True(t, g.HasNode("D"))
	assert.True(t, g.HasEdge("C", "D"))
	assert.False(t, g.HasEdge("B", "D"))
}

func TestGraph_RemoveNodeCascade_AbsentNodeIsNoop(t *testing.T) {
	g := newTestGraph(t)
	addNode(t, g, "A")

	result := g.RemoveNodeCascade("Missing")

	assert.Empty(t, result.RemovedNodes)
	assert.Empty(t, result.RemovedEdges)
	assert.Equal(t, 1, g.NodeCount())
}

func TestGraph_RemoveNodeCascade_SelfLoop(t *testing.T) {
	g := newTestGraph(t)
	addNode(t, g, "A")
	addNode(t, g, "B")
	addEdge(t, g, "A", "B")
	addEdge(t, g, "B", "B")

	result := g.RemoveNodeCascade("B")

	assert.Len(t, result.RemovedNodes, 1)
	assert.Len(t, result.RemovedEdges, 2)
	assert.Equal(t, 0, g.EdgeCount())
}

func TestGraph_DegreeLookups(t *testing.T) {
	g := newTestGraph(t)
	addNode(t, g, "A")
	addNode(t, g, "B")
	addNode(t, g, "C")
	addEdge(t, g, "A", "B")
	addEdge(t, g, "C", "B")
	addEdge(t, g, "B", "C")

	assert.Len(t, g.FindOutgoingEdges("B"), 1)
	assert.Len(t, g.FindIncomingEdges("B"), 2)
	assert.Empty(t, g.FindIncomingEdges("A"))
}

func TestGraph_InsertionOrderPreserved(t *testing.T) {
	g := newTestGraph(t)
	addNode(t, g, "C")
	addNode(t, g, "A")
	addNode(t, g, "B")

	nodes := g.Nodes()

	require.Len(t, nodes, 3)
	assert.Equal(t, "C", nodes[0].ID())
	assert.Equal(t, "A", nodes[1].ID())
	assert.Equal(t, "B", nodes[2].ID())
}

func TestGraph_NodeCapEnforced(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.MaxNodesPerGraph = 2
	g := aggregates.NewGraph(cfg)

	addNode(t, g, "A")
	addNode(t, g, "B")

	_, _, err := g.UpsertNode(entities.ArticleData{CanonicalTitle: "C"})

	assert.True(t, pkgerrors.IsConflict(err))
}

func TestGraph_Clear(t *testing.T) {
	g := newTestGraph(t)
	addNode(t, g, "A")
	addNode(t, g, "B")
	addEdge(t, g, "A", "B")

	g.Clear()

	assert.Equal(t, 0, g.NodeCount())
	assert.Equal(t, 0, g.EdgeCount())
	assert.NoError(t, g.Validate())
}
