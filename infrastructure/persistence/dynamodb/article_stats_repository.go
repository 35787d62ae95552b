package dynamodb

import (
	"context"
	"fmt"

	"wikigraph-backend/application/ports"
	"wikigraph-backend/domain/core/entities"
	pkgerrors "wikigraph-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// ArticleStatsRepository keeps cross-snapshot aggregates in DynamoDB. Every
// write is a single ADD update, so concurrent shares from different processes
// never lose increments and the average is always derivable from the two
// counters on the item.
type ArticleStatsRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewArticleStatsRepository creates a new DynamoDB stats repository
func NewArticleStatsRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *ArticleStatsRepository {
	return &ArticleStatsRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// articleStatsItem is the DynamoDB item structure for per-article aggregates
type articleStatsItem struct {
	PK               string `dynamodbav:"PK"`
	SK               string `dynamodbav:"SK"`
	Title            string `dynamodbav:"Title"`
	TotalAppearances int64  `dynamodbav:"TotalAppearances"`
	TotalConnections int64  `dynamodbav:"TotalConnections"`
}

// linkStatsItem is the DynamoDB item structure for ordered-pair counters
type linkStatsItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	SourceID    string `dynamodbav:"SourceID"`
	TargetID    string `dynamodbav:"TargetID"`
	Occurrences int64  `dynamodbav:"Occurrences"`
}

// RecordAppearance bumps the article's counters atomically and returns the
// fresh aggregate from the same round trip.
func (r *ArticleStatsRepository) RecordAppearance(ctx context.Context, title string, connections int) (*ports.ArticleStats, error) {
	update := expression.
		Add(expression.Name("TotalAppearances"), expression.Value(1)).
		Add(expression.Name("TotalConnections"), expression.Value(connections)).
		Set(expression.Name("Title"), expression.Value(title))

	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("building stats update", err)
	}

	output, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       articleStatsKey(title),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		r.logger.Error("failed to record appearance",
			zap.String("title", title),
			zap.Error(err),
		)
		return nil, pkgerrors.NewDatabaseError("record appearance", err)
	}

	var item articleStatsItem
	if err := attributevalue.UnmarshalMap(output.Attributes, &item); err != nil {
		return nil, pkgerrors.NewInternalError("unmarshaling article stats", err)
	}

	return item.toStats(), nil
}

// RecordLinkOccurrence bumps the counter for an ordered source/target pair
func (r *ArticleStatsRepository) RecordLinkOccurrence(ctx context.Context, sourceID, targetID string) error {
	update := expression.
		Add(expression.Name("Occurrences"), expression.Value(1)).
		Set(expression.Name("SourceID"), expression.Value(sourceID)).
		Set(expression.Name("TargetID"), expression.Value(targetID))

	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return pkgerrors.NewInternalError("building link stats update", err)
	}

	if _, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       linkStatsKey(sourceID, targetID),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}); err != nil {
		return pkgerrors.NewDatabaseError("record link occurrence", err)
	}

	return nil
}

// GetArticleStats reads the current aggregate for a title
func (r *ArticleStatsRepository) GetArticleStats(ctx context.Context, title string) (*ports.ArticleStats, error) {
	output, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       articleStatsKey(title),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("load article stats", err)
	}
	if output.Item == nil {
		return nil, pkgerrors.NewNotFoundError("article stats")
	}

	var item articleStatsItem
	if err := attributevalue.UnmarshalMap(output.Item, &item); err != nil {
		return nil, pkgerrors.NewInternalError("unmarshaling article stats", err)
	}

	return item.toStats(), nil
}

// GetLinkStats reads the current counter for an ordered pair
func (r *ArticleStatsRepository) GetLinkStats(ctx context.Context, sourceID, targetID string) (*ports.LinkStats, error) {
	output, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       linkStatsKey(sourceID, targetID),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("load link stats", err)
	}
	if output.Item == nil {
		return nil, pkgerrors.NewNotFoundError("link stats")
	}

	var item linkStatsItem
	if err := attributevalue.UnmarshalMap(output.Item, &item); err != nil {
		return nil, pkgerrors.NewInternalError("unmarshaling link stats", err)
	}

	return &ports.LinkStats{
		SourceID:    item.SourceID,
		TargetID:    item.TargetID,
		Occurrences: item.Occurrences,
	}, nil
}

func (i articleStatsItem) toStats() *ports.ArticleStats {
	stats := &ports.ArticleStats{
		Title:            i.Title,
		TotalAppearances: i.TotalAppearances,
		TotalConnections: i.TotalConnections,
	}
	if stats.TotalAppearances > 0 {
		stats.AverageConnections = float64(stats.TotalConnections) / float64(stats.TotalAppearances)
	}
	return stats
}

func articleStatsKey(title string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("ARTICLE#%s", title)},
		"SK": &types.AttributeValueMemberS{Value: "STATS"},
	}
}

func linkStatsKey(sourceID, targetID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("LINK#%s", entities.EdgeID(sourceID, targetID))},
		"SK": &types.AttributeValueMemberS{Value: "STATS"},
	}
}

var _ ports.ArticleStatsRepository = (*ArticleStatsRepository)(nil)
