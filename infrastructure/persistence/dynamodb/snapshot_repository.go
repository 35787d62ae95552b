package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wikigraph-backend/application/ports"
	"wikigraph-backend/domain/core/aggregates"
	pkgerrors "wikigraph-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SnapshotRepository implements the SnapshotRepository port on DynamoDB.
// One item per snapshot; the view counter moves via an atomic ADD so
// concurrent viewers never lose increments.
type SnapshotRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger

	ttl           time.Duration
	viewExtension time.Duration
}

// NewSnapshotRepository creates a new DynamoDB snapshot repository
func NewSnapshotRepository(
	client *dynamodb.Client,
	tableName string,
	ttl, viewExtension time.Duration,
	logger *zap.Logger,
) *SnapshotRepository {
	return &SnapshotRepository{
		client:        client,
		tableName:     tableName,
		ttl:           ttl,
		viewExtension: viewExtension,
		logger:        logger,
	}
}

// snapshotItem is the DynamoDB item structure for a snapshot
type snapshotItem struct {
	PK          string                  `dynamodbav:"PK"`
	SK          string                  `dynamodbav:"SK"`
	EntityType  string                  `dynamodbav:"EntityType"`
	SnapshotID  string                  `dynamodbav:"SnapshotID"`
	Title       string                  `dynamodbav:"Title"`
	CreatorName string                  `dynamodbav:"CreatorName"`
	Description string                  `dynamodbav:"Description"`
	Nodes       []aggregates.NodeRecord `dynamodbav:"Nodes"`
	Edges       []aggregates.EdgeRecord `dynamodbav:"Edges"`
	CreatedAt   string                  `dynamodbav:"CreatedAt"`
	ExpiresAt   int64                   `dynamodbav:"ExpiresAt"` // epoch seconds, TTL attribute
	ViewCount   int64                   `dynamodbav:"ViewCount"`
}

// Save assigns an id and expiry and persists the snapshot
func (r *SnapshotRepository) Save(ctx context.Context, snap *aggregates.Snapshot) (*aggregates.Snapshot, error) {
	stored := *snap
	stored.ID = uuid.New().String()
	stored.CreatedAt = time.Now()
	stored.ExpiresAt = stored.CreatedAt.Add(r.ttl)
	stored.ViewCount = 0

	item := snapshotItem{
		PK:          snapshotPK(stored.ID),
		SK:          "METADATA",
		EntityType:  "SNAPSHOT",
		SnapshotID:  stored.ID,
		Title:       stored.Title,
		CreatorName: stored.CreatorName,
		Description: stored.Description,
		Nodes:       stored.Nodes,
		Edges:       stored.Edges,
		CreatedAt:   stored.CreatedAt.Format(time.RFC3339),
		ExpiresAt:   stored.ExpiresAt.Unix(),
		ViewCount:   0,
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, pkgerrors.NewInternalError("marshaling snapshot", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("failed to save snapshot",
			zap.String("snapshotID", stored.ID),
			zap.Error(err),
		)
		return nil, pkgerrors.NewDatabaseError("save snapshot", err)
	}

	r.logger.Info("saved snapshot",
		zap.String("snapshotID", stored.ID),
		zap.Int("nodes", len(stored.Nodes)),
		zap.Int("edges", len(stored.Edges)),
	)

	return &stored, nil
}

// Load retrieves a snapshot. Missing items and items past their expiry (not
// yet swept by the table's TTL) both read as not found.
func (r *SnapshotRepository) Load(ctx context.Context, id string) (*aggregates.Snapshot, error) {
	output, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       snapshotKey(id),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("load snapshot", err)
	}
	if output.Item == nil {
		return nil, pkgerrors.NewNotFoundError("snapshot")
	}

	var item snapshotItem
	if err := attributevalue.UnmarshalMap(output.Item, &item); err != nil {
		return nil, pkgerrors.NewInternalError("unmarshaling snapshot", err)
	}

	expiresAt := time.Unix(item.ExpiresAt, 0)
	if time.Now().After(expiresAt) {
		return nil, pkgerrors.NewNotFoundError("snapshot")
	}

	createdAt, err := time.Parse(time.RFC3339, item.CreatedAt)
	if err != nil {
		createdAt = time.Time{}
	}

	return &aggregates.Snapshot{
		ID:          item.SnapshotID,
		Title:       item.Title,
		CreatorName: item.CreatorName,
		Description: item.Description,
		Nodes:       item.Nodes,
		Edges:       item.Edges,
		CreatedAt:   createdAt,
		ExpiresAt:   expiresAt,
		ViewCount:   item.ViewCount,
	}, nil
}

// RecordView atomically increments the view counter and extends the expiry,
// forward only. A fresh snapshot already carries the full TTL, which may sit
// past now+viewExtension, so the expiry write is guarded separately: the
// counter always moves, the expiry only when the extension actually wins.
func (r *SnapshotRepository) RecordView(ctx context.Context, id string) error {
	update := expression.Add(expression.Name("ViewCount"), expression.Value(1))
	condition := expression.AttributeExists(expression.Name("PK"))

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(condition).
		Build()
	if err != nil {
		return pkgerrors.NewInternalError("building view update", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       snapshotKey(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return pkgerrors.NewNotFoundError("snapshot")
		}
		return pkgerrors.NewDatabaseError("record view", err)
	}

	return r.extendExpiry(ctx, id)
}

// extendExpiry pushes ExpiresAt to now+viewExtension unless the stored expiry
// is already later. The lost conditional check is the expected outcome for
// young snapshots, not an error.
func (r *SnapshotRepository) extendExpiry(ctx context.Context, id string) error {
	newExpiry := time.Now().Add(r.viewExtension).Unix()

	update := expression.Set(expression.Name("ExpiresAt"), expression.Value(newExpiry))
	condition := expression.LessThan(expression.Name("ExpiresAt"), expression.Value(newExpiry))

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(condition).
		Build()
	if err != nil {
		return pkgerrors.NewInternalError("building expiry update", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       snapshotKey(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return nil
		}
		return pkgerrors.NewDatabaseError("extend snapshot expiry", err)
	}

	return nil
}

// Delete removes a snapshot
func (r *SnapshotRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       snapshotKey(id),
	}); err != nil {
		return pkgerrors.NewDatabaseError("delete snapshot", err)
	}
	return nil
}

func snapshotPK(id string) string {
	return fmt.Sprintf("SNAPSHOT#%s", id)
}

func snapshotKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: snapshotPK(id)},
		"SK": &types.AttributeValueMemberS{Value: "METADATA"},
	}
}

var _ ports.SnapshotRepository = (*SnapshotRepository)(nil)
