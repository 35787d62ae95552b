package entities_test

import (
	"testing"

	"wikigraph-backend/domain/core/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_Creation(t *testing.T) {
	// Arrange
	data := entities.ArticleData{
		CanonicalTitle:     "Albert_Einstein",
		Content:            "German-born theoretical physicist",
		SourceURL:          "https://en.wikipedia.org/wiki/Albert_Einstein",
		OutgoingLinkTitles: []string{"Physics", "Relativity"},
	}

	// Act
	node, err := entities.NewNode(data)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Albert Einstein", node.ID())
	assert.Equal(t, "Albert Einstein", node.Title())
	assert.False(t, node.Expanded())
	assert.Equal(t, 1, node.Version())
	assert.Equal(t, []string{"Physics", "Relativity"}, node.OutgoingLinkTitles())
	assert.GreaterOrEqual(t, node.Weight(), 6)
}

func TestNode_EmptyTitleRejected(t *testing.T) {
	_, err := entities.NewNode(entities.ArticleData{CanonicalTitle: "   "})
	assert.Error(t, err)
}

func TestNode_LinksNormalizedAndDeduped(t *testing.T) {
	node, err := entities.NewNode(entities.ArticleData{
		CanonicalTitle:     "Physics",
		OutgoingLinkTitles: []string{"Quantum_mechanics", "Quantum mechanics", "Energy"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Quantum mechanics", "Energy"}, node.OutgoingLinkTitles())
	assert.True(t, node.HasLinkTo("Quantum_mechanics"))
	assert.True(t, node.HasLinkTo("Quantum mechanics"))
	assert.False(t, node.HasLinkTo("Biology"))
}

func TestNode_ApplyResolved_LastWriteWins(t *testing.T) {
	// Arrange
	node, err := entities.NewNode(entities.ArticleData{
		CanonicalTitle:     "Physics",
		Content:            "old content",
		OutgoingLinkTitles: []string{"Energy"},
	})
	require.NoError(t, err)

	// Act
	node.ApplyResolved(entities.ArticleData{
		CanonicalTitle:     "Physics",
		Content:            "new content",
		OutgoingLinkTitles: []string{"Matter"},
	})

	// Assert
	assert.Equal(t, "new content", node.Content())
	assert.Equal(t, []string{"Matter"}, node.OutgoingLinkTitles())
	assert.False(t, node.HasLinkTo("Energy"))
	assert.Equal(t, 2, node.Version())
}

func TestNode_MarkExpandedIsMonotonic(t *testing.T) {
	node, err := entities.NewNode(entities.ArticleData{CanonicalTitle: "Physics"})
	require.NoError(t, err)

	node.MarkExpanded()
	version := node.Version()

	node.MarkExpanded()

	assert.True(t, node.Expanded())
	assert.Equal(t, version, node.Version(), "repeated marking must not bump the version")
}

func TestNode_ExpandedSurvivesRefetch(t *testing.T) {
	node, err := entities.NewNode(entities.ArticleData{CanonicalTitle: "Physics"})
	require.NoError(t, err)
	node.MarkExpanded()

	node.ApplyResolved(entities.ArticleData{CanonicalTitle: "Physics", Content: "refetched"})

	assert.True(t, node.Expanded())
}

func TestEdgeID_Deterministic(t *testing.T) {
	assert.Equal(t, "A->B", entities.EdgeID("A", "B"))
	assert.NotEqual(t, entities.EdgeID("A", "B"), entities.EdgeID("B", "A"))
}
