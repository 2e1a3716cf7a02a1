package services

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"festa-events-pipeline/internal/models"
)

// DocumentStore is the document sink: one DynamoDB item per adapted event,
// keyed by the generated id. Implements EventSink.
type DocumentStore struct {
	client *dynamodb.Client
	table  string
}

// NewDocumentStore creates a document store using the default AWS credential
// chain. The table name comes from FESTA_EVENTS_TABLE when set.
func NewDocumentStore(ctx context.Context) (*DocumentStore, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	table := os.Getenv("FESTA_EVENTS_TABLE")
	if table == "" {
		table = "festa-events"
	}

	return &DocumentStore{
		client: dynamodb.NewFromConfig(cfg),
		table:  table,
	}, nil
}

// NewDocumentStoreWithClient creates a document store around an existing
// client, used by tests.
func NewDocumentStoreWithClient(client *dynamodb.Client, table string) *DocumentStore {
	return &DocumentStore{client: client, table: table}
}

// InsertEvent upserts one adapted event document.
func (s *DocumentStore) InsertEvent(ctx context.Context, event *models.Event) error {
	item, err := attributevalue.MarshalMap(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put event: %w", err)
	}
	return nil
}

// GetEvent retrieves one event document by id.
func (s *DocumentStore) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if result.Item == nil {
		return nil, fmt.Errorf("event not found")
	}

	var event models.Event
	if err := attributevalue.UnmarshalMap(result.Item, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return &event, nil
}

// DeleteEvent removes one event document.
func (s *DocumentStore) DeleteEvent(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// ExistingSourceIDs scans the source attribute of every stored document.
// A projected scan is enough at current table sizes.
func (s *DocumentStore) ExistingSourceIDs(ctx context.Context) (map[string]struct{}, error) {
	ids := make(map[string]struct{})

	input := &dynamodb.ScanInput{
		TableName:                aws.String(s.table),
		ProjectionExpression:     aws.String("#src"),
		ExpressionAttributeNames: map[string]string{"#src": "source"},
	}

	for {
		result, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source ids: %w", err)
		}

		for _, item := range result.Items {
			var row struct {
				Source string `dynamodbav:"source"`
			}
			if err := attributevalue.UnmarshalMap(item, &row); err != nil {
				return nil, fmt.Errorf("failed to unmarshal source id: %w", err)
			}
			if row.Source != "" {
				ids[row.Source] = struct{}{}
			}
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
	return ids, nil
}
