package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorEncodeAndDecode(t *testing.T) {
	key, err := attributevalue.MarshalMap(map[string]string{
		"PK":     registrationPK("9876543210"),
		"SK":     registrationSK(),
		"GSI1PK": registrationEntityName,
		"GSI1SK": "2025-07-01T10:00:00Z#some-id",
	})
	require.NoError(t, err)

	cursor, err := lastEvalKeyToCursor(key)
	require.NoError(t, err)

	keyBack, err := cursorToLastEval(cursor)
	require.NoError(t, err)

	require.Equal(t, key, keyBack)
}

func TestCursorToLastEvalRejectsGarbage(t *testing.T) {
	_, err := cursorToLastEval("not base64 at all!")
	require.Error(t, err)
}

func TestGetKeyFromItem(t *testing.T) {
	item := map[string]types.AttributeValue{
		"PK":   &types.AttributeValueMemberS{Value: "a"},
		"SK":   &types.AttributeValueMemberS{Value: "b"},
		"Name": &types.AttributeValueMemberS{Value: "ignored"},
	}
	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "x"},
		"SK": &types.AttributeValueMemberS{Value: "y"},
	}

	got := getKeyFromItem(key, item)

	assert.Equal(t, map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "a"},
		"SK": &types.AttributeValueMemberS{Value: "b"},
	}, got)
}
