package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bombers-push/internal/domain"
)

// UserNotificationRepo provides typed DynamoDB operations for the
// user_notifications join table, keyed (user_id, notification_id).
type UserNotificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserNotificationRepo(client *dynamodb.Client, tableName string) *UserNotificationRepo {
	return &UserNotificationRepo{client: client, tableName: tableName}
}

// PutIfAbsent creates the join row once per (user, notification). A re-send
// must not reset is_read, so an existing row wins and the call is a no-op.
func (r *UserNotificationRepo) PutIfAbsent(ctx context.Context, un *domain.UserNotification) error {
	item, err := attributevalue.MarshalMap(un)
	if err != nil {
		return fmt.Errorf("marshal user notification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(user_id)"),
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return nil
	}
	return err
}

// MarkRead flips is_read on an existing row. The condition stops the upsert
// from creating a phantom row for a user who was never targeted.
func (r *UserNotificationRepo) MarkRead(ctx context.Context, userID, notificationID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 compositeKey("user_id", userID, "notification_id", notificationID),
		UpdateExpression:    aws.String("SET is_read = :t"),
		ConditionExpression: aws.String("attribute_exists(user_id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("notification not targeted at user: %w", domain.ErrNotFound)
	}
	return err
}

func (r *UserNotificationRepo) Get(ctx context.Context, userID, notificationID string) (*domain.UserNotification, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("user_id", userID, "notification_id", notificationID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user notification not found: %w", domain.ErrNotFound)
	}
	var un domain.UserNotification
	if err := attributevalue.UnmarshalMap(out.Item, &un); err != nil {
		return nil, err
	}
	return &un, nil
}
