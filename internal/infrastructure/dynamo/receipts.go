package dynamo

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bombers-push/internal/domain"
)

// ReceiptRepo provides typed DynamoDB operations for the push_receipts table.
// Rows are keyed (notification_id, device_id); UpdateItem gives upsert
// semantics, so repeated attempts never accumulate history.
type ReceiptRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewReceiptRepo(client *dynamodb.Client, tableName string) *ReceiptRepo {
	return &ReceiptRepo{client: client, tableName: tableName}
}

// RecordDelivered upserts the receipt with delivered_at set and any prior
// failure_reason removed.
func (r *ReceiptRepo) RecordDelivered(ctx context.Context, notificationID, deviceID string, at time.Time) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              compositeKey("notification_id", notificationID, "device_id", deviceID),
		UpdateExpression: aws.String("SET delivered_at = :d, updated_at = :d REMOVE failure_reason"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d": &types.AttributeValueMemberS{Value: at.UTC().Format(time.RFC3339)},
		},
	})
	return err
}

// RecordFailure upserts the receipt with failure_reason set. delivered_at is
// left untouched: a later failure annotates the latest attempt but never
// erases proof of an earlier delivery.
func (r *ReceiptRepo) RecordFailure(ctx context.Context, notificationID, deviceID, reason string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              compositeKey("notification_id", notificationID, "device_id", deviceID),
		UpdateExpression: aws.String("SET failure_reason = :r, updated_at = :t"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":r": &types.AttributeValueMemberS{Value: reason},
			":t": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	return err
}

func (r *ReceiptRepo) ListByNotification(ctx context.Context, notificationID string) ([]domain.PushReceipt, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("notification_id = :nid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":nid": &types.AttributeValueMemberS{Value: notificationID},
		},
	})
	if err != nil {
		return nil, err
	}
	var receipts []domain.PushReceipt
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &receipts); err != nil {
		return nil, err
	}
	return receipts, nil
}
