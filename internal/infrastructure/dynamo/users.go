package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bombers-push/internal/domain"
)

// UserRepo provides the read-only slice of the users table the push engine
// needs for audience resolution. User CRUD belongs to the platform API.
type UserRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserRepo(client *dynamodb.Client, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListEnabled queries the enable-index GSI for every active user. Soft-deleted
// accounts carry enable=0 and never match.
func (r *UserRepo) ListEnabled(ctx context.Context) ([]domain.User, error) {
	return r.queryIndex(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("enable-index"),
		KeyConditionExpression: aws.String("#en = :one"),
		ExpressionAttributeNames: map[string]string{
			"#en": "enable",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
	})
}

func (r *UserRepo) ListByRole(ctx context.Context, role string) ([]domain.User, error) {
	return r.queryIndex(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("role-index"),
		KeyConditionExpression: aws.String("#ro = :r"),
		FilterExpression:       aws.String("#en = :one"),
		ExpressionAttributeNames: map[string]string{
			"#ro": "role",
			"#en": "enable",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":r":   &types.AttributeValueMemberS{Value: role},
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
	})
}

func (r *UserRepo) ListByTeam(ctx context.Context, teamID string) ([]domain.User, error) {
	return r.queryIndex(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("team_id-index"),
		KeyConditionExpression: aws.String("team_id = :tid"),
		FilterExpression:       aws.String("#en = :one"),
		ExpressionAttributeNames: map[string]string{
			"#en": "enable",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":tid": &types.AttributeValueMemberS{Value: teamID},
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
	})
}

func (r *UserRepo) queryIndex(ctx context.Context, input *dynamodb.QueryInput) ([]domain.User, error) {
	var users []domain.User
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []domain.User
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		users = append(users, batch...)
	}
	return users, nil
}
