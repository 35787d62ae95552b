package memory_test

import (
	"context"
	"testing"

	"wikigraph-backend/infrastructure/persistence/memory"
	pkgerrors "wikigraph-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticleStatsRepository_RunningAverage(t *testing.T) {
	repo := memory.NewArticleStatsRepository()
	ctx := context.Background()

	first, err := repo.RecordAppearance(ctx, "Physics", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.TotalAppearances)
	assert.InDelta(t, 3.0, first.AverageConnections, 0.0001)

	second, err := repo.RecordAppearance(ctx, "Physics", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.TotalAppearances)
	assert.Equal(t, int64(4), second.TotalConnections)
	assert.InDelta(t, 2.0, second.AverageConnections, 0.0001)
}

func TestArticleStatsRepository_MissingReads(t *testing.T) {
	repo := memory.NewArticleStatsRepository()
	ctx := context.Background()

	_, err := repo.GetArticleStats(ctx, "Unknown")
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = repo.GetLinkStats(ctx, "A", "B")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestArticleStatsRepository_LinkOccurrences(t *testing.T) {
	repo := memory.NewArticleStatsRepository()
	ctx := context.Background()

	require.NoError(t, repo.RecordLinkOccurrence(ctx, "A", "B"))
	require.NoError(t, repo.RecordLinkOccurrence(ctx, "A", "B"))
	require.NoError(t, repo.RecordLinkOccurrence(ctx, "B", "A"))

	forward, err := repo.GetLinkStats(ctx, "A", "B")
	require.NoError(t, err)
	assert.Equal(t, int64(2), forward.Occurrences)

	backward, err := repo.GetLinkStats(ctx, "B", "A")
	require.NoError(t, err)
	assert.Equal(t, int64(1), backward.Occurrences)
}
