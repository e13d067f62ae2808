package dynamo

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/soumya-corp/sammelan-registration/registration"
	"github.com/soumya-corp/sammelan-registration/sequence"
)

var _ sequence.CounterStore = &DB{}

type counterDynamo struct {
	PK string
	SK string

	Count       int64
	LastUpdated time.Time
}

const (
	counterEntityName = "COUNTER"
	counterBarcodeKey = "BARCODE"
)

func counterPK() string {
	return counterEntityName + "#" + counterBarcodeKey
}

func counterSK() string {
	return counterEntityName
}

// Increment claims the next barcode number with a read followed by a
// compare-and-set write. A concurrent claim of the same number fails the
// condition and surfaces as an error; the allocator retries.
func (d *DB) Increment(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	resp, err := d.dynamoClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: counterPK()},
			"SK": &types.AttributeValueMemberS{Value: counterSK()},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, registration.NewTimeoutError("Increment timed out")
		}
		return 0, registration.NewFailedToFetchError("Failed to fetch barcode counter", err)
	}

	if len(resp.Item) == 0 {
		return d.initCounter(ctx)
	}

	var counter counterDynamo
	err = attributevalue.UnmarshalMap(resp.Item, &counter)
	if err != nil {
		panic("failed to unmarshal barcode counter from dynamo: " + err.Error())
	}

	next := counter.Count + 1
	expr := exprMustBuild(expression.NewBuilder().
		WithUpdate(expression.
			Set(expression.Name("Count"), expression.Value(next)).
			Set(expression.Name("LastUpdated"), expression.Value(time.Now()))).
		WithCondition(expression.Name("Count").Equal(expression.Value(counter.Count))))

	_, err = d.dynamoClient.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: counterPK()},
			"SK": &types.AttributeValueMemberS{Value: counterSK()},
		},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condCheckFailedErr *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailedErr) {
			return 0, registration.NewFailedToWriteError("Barcode counter was claimed concurrently", err)
		} else if errors.Is(err, context.DeadlineExceeded) {
			return 0, registration.NewTimeoutError("Increment timed out")
		} else {
			return 0, registration.NewFailedToWriteError("Failed UpdateItem call", err)
		}
	}

	return next, nil
}

// initCounter lazily creates the counter item at 1 the first time a barcode
// is claimed. Losing the create race to another claimant is an error so the
// caller re-reads instead of double-counting the first number.
func (d *DB) initCounter(ctx context.Context) (int64, error) {
	item, err := attributevalue.MarshalMap(counterDynamo{
		PK:          counterPK(),
		SK:          counterSK(),
		Count:       1,
		LastUpdated: time.Now(),
	})
	if err != nil {
		return 0, registration.NewFailedToTranslateToDBModelError("Failed to convert counter to counterDynamo", err)
	}

	expr := exprMustBuild(expression.NewBuilder().
		WithCondition(newEntityConditional()))

	_, err = d.dynamoClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(d.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condCheckFailedErr *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailedErr) {
			return 0, registration.NewFailedToWriteError("Barcode counter was created concurrently", err)
		} else if errors.Is(err, context.DeadlineExceeded) {
			return 0, registration.NewTimeoutError("Increment timed out")
		} else {
			return 0, registration.NewFailedToWriteError("Failed PutItem call", err)
		}
	}

	return 1, nil
}
