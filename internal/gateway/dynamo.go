package gateway

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/botucare/clinic-backend/pkg/logging"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoGateway persists each collection in its own DynamoDB table,
// "{prefix}{collection}", keyed by the string attribute "id".
type DynamoGateway struct {
	client      dynamoAPI
	tablePrefix string
	logger      *logging.Logger
}

// NewDynamoGateway builds a gateway backed by the provided DynamoDB client.
func NewDynamoGateway(client dynamoAPI, tablePrefix string, logger *logging.Logger) *DynamoGateway {
	if client == nil {
		panic("gateway: dynamodb client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DynamoGateway{
		client:      client,
		tablePrefix: tablePrefix,
		logger:      logger,
	}
}

var _ Gateway = (*DynamoGateway)(nil)

func (g *DynamoGateway) table(collection string) string {
	return g.tablePrefix + collection
}

// Create assigns a uuid, persists the record and returns the new id.
func (g *DynamoGateway) Create(ctx context.Context, collection string, record any) (string, error) {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return "", persistErr("marshal", collection, err)
	}

	id := uuid.NewString()
	item["id"] = &types.AttributeValueMemberS{Value: id}

	_, err = g.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(g.table(collection)),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return "", persistErr("create", collection, err)
	}
	return id, nil
}

// Update applies a partial record to an existing document. Returns
// ErrNotFound when the id is absent.
func (g *DynamoGateway) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	if len(patch) == 0 {
		return nil
	}

	// Deterministic expression order keeps updates reproducible in tests.
	fields := make([]string, 0, len(patch))
	for field := range patch {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	names := make(map[string]string, len(fields))
	values := make(map[string]types.AttributeValue, len(fields))
	expr := "SET"
	for i, field := range fields {
		av, err := attributevalue.Marshal(patch[field])
		if err != nil {
			return persistErr("marshal", collection, err)
		}
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		names[nameKey] = field
		values[valueKey] = av
		if i > 0 {
			expr += ","
		}
		expr += fmt.Sprintf(" %s = %s", nameKey, valueKey)
	}

	_, err := g.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(g.table(collection)),
		Key:                       idKey(id),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ConditionExpression:       aws.String("attribute_exists(id)"),
	})
	if err != nil {
		if isConditionFailure(err) {
			return ErrNotFound
		}
		return persistErr("update", collection, err)
	}
	return nil
}

// Delete removes a document, returning ErrNotFound when the id is absent.
func (g *DynamoGateway) Delete(ctx context.Context, collection, id string) error {
	_, err := g.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(g.table(collection)),
		Key:                 idKey(id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		if isConditionFailure(err) {
			return ErrNotFound
		}
		return persistErr("delete", collection, err)
	}
	return nil
}

// Query scans the collection, optionally restricted to one doctor, and
// unmarshals the result set into out. Ordering is not guaranteed.
func (g *DynamoGateway) Query(ctx context.Context, collection string, filter Filter, out any) error {
	input := &dynamodb.ScanInput{
		TableName: aws.String(g.table(collection)),
	}
	if filter.DoctorID != "" {
		input.FilterExpression = aws.String("#d = :doctor")
		input.ExpressionAttributeNames = map[string]string{"#d": "doctorId"}
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":doctor": &types.AttributeValueMemberS{Value: filter.DoctorID},
		}
	}

	var items []map[string]types.AttributeValue
	for {
		page, err := g.client.Scan(ctx, input)
		if err != nil {
			return persistErr("query", collection, err)
		}
		items = append(items, page.Items...)
		if page.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = page.LastEvaluatedKey
	}

	if err := attributevalue.UnmarshalListOfMaps(items, out); err != nil {
		return persistErr("unmarshal", collection, err)
	}
	return nil
}

// Get unmarshals a single record by id, returning ErrNotFound when absent.
func (g *DynamoGateway) Get(ctx context.Context, collection, id string, out any) error {
	resp, err := g.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(g.table(collection)),
		Key:       idKey(id),
	})
	if err != nil {
		return persistErr("get", collection, err)
	}
	if resp.Item == nil {
		return ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(resp.Item, out); err != nil {
		return persistErr("unmarshal", collection, err)
	}
	return nil
}

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func isConditionFailure(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
