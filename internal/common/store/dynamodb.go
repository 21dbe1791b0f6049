// internal/common/store/dynamodb.go
package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"dining-concierge/internal/models"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the stores.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

const (
	historyKey = "Email"
	recordKey  = "Business ID"
)

type DynamoHistoryStore struct {
	client DynamoDBAPI
	table  string
}

func NewDynamoHistoryStore(client DynamoDBAPI, table string) *DynamoHistoryStore {
	return &DynamoHistoryStore{client: client, table: table}
}

func (s *DynamoHistoryStore) Get(ctx context.Context, email string) (*models.UserHistory, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			historyKey: &types.AttributeValueMemberS{Value: email},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get history %s: %w", email, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var history models.UserHistory
	if err := attributevalue.UnmarshalMap(out.Item, &history); err != nil {
		return nil, fmt.Errorf("decode history %s: %w", email, err)
	}
	return &history, nil
}

// Put overwrites the user's single history item.
func (s *DynamoHistoryStore) Put(ctx context.Context, history *models.UserHistory) error {
	item, err := attributevalue.MarshalMap(history)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put history %s: %w", history.Email, err)
	}
	return nil
}

type DynamoRecordStore struct {
	client DynamoDBAPI
	table  string
}

func NewDynamoRecordStore(client DynamoDBAPI, table string) *DynamoRecordStore {
	return &DynamoRecordStore{client: client, table: table}
}

func (s *DynamoRecordStore) Get(ctx context.Context, businessID string) (*models.Restaurant, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			recordKey: &types.AttributeValueMemberS{Value: businessID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get restaurant %s: %w", businessID, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var restaurant models.Restaurant
	if err := attributevalue.UnmarshalMap(out.Item, &restaurant); err != nil {
		return nil, fmt.Errorf("decode restaurant %s: %w", businessID, err)
	}
	return &restaurant, nil
}
