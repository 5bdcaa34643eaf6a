// internal/store/dynamo/dynamo.go
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/CullanAriyawanse/eelo/internal/store"
)

// Store implements the substrate contract on DynamoDB. Each logical
// collection maps to one table whose partition key is the record's id field.
//
// List semantics line up with the contract natively: list_append with
// if_not_exists initializes absent fields, and REMOVE list[i] is a silent
// no-op when the index is out of range.
type Store struct {
	client *dynamodb.Client
	tables map[string]table
}

type table struct {
	name    string
	keyAttr string
}

// New builds a DynamoDB-backed store from the environment:
//
//   - DYNAMODB_ENDPOINT: optional endpoint override (localstack et al.)
//   - AWS_REGION: region, resolved by the SDK's default chain otherwise
//   - USER_TABLE_NAME, LOBBY_TABLE_NAME: table names
func New(ctx context.Context) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := os.Getenv("DYNAMODB_ENDPOINT")
	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return &Store{
		client: client,
		tables: map[string]table{
			"users":   {name: getEnv("USER_TABLE_NAME", "eelo-users"), keyAttr: "userId"},
			"lobbies": {name: getEnv("LOBBY_TABLE_NAME", "eelo-lobbies"), keyAttr: "lobbyId"},
		},
	}, nil
}

func (s *Store) Put(ctx context.Context, collection, key string, rec store.Record) error {
	t, err := s.table(collection)
	if err != nil {
		return err
	}
	item, err := attributevalue.MarshalMap(map[string]any(rec))
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, key, err)
	}
	item[t.keyAttr] = &types.AttributeValueMemberS{Value: key}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.name),
		Item:      item,
	})
	if err != nil {
		return store.Unavailable(fmt.Errorf("put %s/%s: %w", collection, key, err))
	}
	return nil
}

func (s *Store) Get(ctx context.Context, collection, key string) (store.Record, error) {
	t, err := s.table(collection)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.name),
		Key:       t.key(key),
	})
	if err != nil {
		return nil, store.Unavailable(fmt.Errorf("get %s/%s: %w", collection, key, err))
	}
	if out.Item == nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, key, store.ErrNotFound)
	}

	var rec map[string]any
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal %s/%s: %w", collection, key, err)
	}
	return store.Record(rec), nil
}

func (s *Store) UpdateAppendToList(ctx context.Context, collection, key, listField string, value any) error {
	t, err := s.table(collection)
	if err != nil {
		return err
	}
	av, err := attributevalue.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal list value for %s/%s: %w", collection, key, err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(t.name),
		Key:              t.key(key),
		UpdateExpression: aws.String("SET #f = list_append(if_not_exists(#f, :empty), :v)"),
		ExpressionAttributeNames: map[string]string{
			"#f": listField,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v":     &types.AttributeValueMemberL{Value: []types.AttributeValue{av}},
			":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
		},
	})
	if err != nil {
		return store.Unavailable(fmt.Errorf("append %s/%s %s: %w", collection, key, listField, err))
	}
	return nil
}

func (s *Store) UpdateRemoveAtIndex(ctx context.Context, collection, key, listField string, index int) error {
	t, err := s.table(collection)
	if err != nil {
		return err
	}

	// The existence condition keeps an UpdateItem against a vanished record
	// from upserting a bare item holding only the key.
	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(t.name),
		Key:                 t.key(key),
		UpdateExpression:    aws.String(fmt.Sprintf("REMOVE #f[%d]", index)),
		ConditionExpression: aws.String("attribute_exists(#k)"),
		ExpressionAttributeNames: map[string]string{
			"#f": listField,
			"#k": t.keyAttr,
		},
	})
	if err != nil {
		var cond *types.ConditionalCheckFailedException
		if errors.As(err, &cond) {
			return fmt.Errorf("remove %s/%s %s[%d]: %w", collection, key, listField, index, store.ErrNotFound)
		}
		return store.Unavailable(fmt.Errorf("remove %s/%s %s[%d]: %w", collection, key, listField, index, err))
	}
	return nil
}

func (s *Store) ScanByKeyPrefix(ctx context.Context, collection, prefix string) ([]store.Record, error) {
	t, err := s.table(collection)
	if err != nil {
		return nil, err
	}

	input := &dynamodb.ScanInput{
		TableName:        aws.String(t.name),
		FilterExpression: aws.String("begins_with(#k, :p)"),
		ExpressionAttributeNames: map[string]string{
			"#k": t.keyAttr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p": &types.AttributeValueMemberS{Value: prefix},
		},
	}

	var recs []store.Record
	for {
		out, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, store.Unavailable(fmt.Errorf("scan %s prefix %q: %w", collection, prefix, err))
		}
		for _, item := range out.Items {
			var rec map[string]any
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				return nil, fmt.Errorf("unmarshal scan item in %s: %w", collection, err)
			}
			recs = append(recs, store.Record(rec))
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return recs, nil
}

func (s *Store) table(collection string) (table, error) {
	t, ok := s.tables[collection]
	if !ok {
		return table{}, fmt.Errorf("unknown collection %q", collection)
	}
	return t, nil
}

func (t table) key(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		t.keyAttr: &types.AttributeValueMemberS{Value: key},
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
