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

// TeamRepo provides the team directory reads backing region-based targeting.
type TeamRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewTeamRepo(client *dynamodb.Client, tableName string) *TeamRepo {
	return &TeamRepo{client: client, tableName: tableName}
}

func (r *TeamRepo) Get(ctx context.Context, teamID string) (*domain.Team, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("team_id", teamID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("team not found: %w", domain.ErrNotFound)
	}
	var t domain.Team
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TeamRepo) ListByRegion(ctx context.Context, region string) ([]domain.Team, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("region-index"),
		KeyConditionExpression: aws.String("#rg = :r"),
		ExpressionAttributeNames: map[string]string{
			"#rg": "region",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":r": &types.AttributeValueMemberS{Value: region},
		},
	})
	if err != nil {
		return nil, err
	}
	var teams []domain.Team
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}
