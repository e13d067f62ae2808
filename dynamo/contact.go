package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/soumya-corp/sammelan-registration/registration"
)

var _ registration.ContactDirectory = &DB{}

// contactDynamo is an invitee directory entry. The directory is loaded ahead
// of the event and is read-only from the wizard's point of view; PutContact
// exists for the import tooling and for tests.
type contactDynamo struct {
	PK string
	SK string

	PhoneNumber string
	Name        string
	City        string
	State       string
	SpouseName  string
}

const (
	contactEntityName = "CONTACT"
)

func contactPK(phoneNumber string) string {
	return fmt.Sprintf("%s#%s", contactEntityName, phoneNumber)
}

func contactSK() string {
	return contactEntityName
}

func contactToDynamo(contact registration.Contact) contactDynamo {
	return contactDynamo{
		PK:          contactPK(contact.PhoneNumber),
		SK:          contactSK(),
		PhoneNumber: contact.PhoneNumber,
		Name:        contact.Name,
		City:        contact.City,
		State:       contact.State,
		SpouseName:  contact.SpouseName,
	}
}

func dynamoToContact(dynContact contactDynamo) registration.Contact {
	return registration.Contact{
		PhoneNumber: dynContact.PhoneNumber,
		Name:        dynContact.Name,
		City:        dynContact.City,
		State:       dynContact.State,
		SpouseName:  dynContact.SpouseName,
	}
}

func (d *DB) GetContactByPhone(ctx context.Context, phoneNumber string) (registration.Contact, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	resp, err := d.dynamoClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: contactPK(phoneNumber)},
			"SK": &types.AttributeValueMemberS{Value: contactSK()},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return registration.Contact{}, registration.NewTimeoutError("GetContactByPhone timed out")
		}
		return registration.Contact{}, registration.NewFailedToFetchError(fmt.Sprintf("Failed to fetch contact for phone number %q", phoneNumber), err)
	}

	if len(resp.Item) == 0 {
		return registration.Contact{}, registration.NewContactDoesNotExistError(fmt.Sprintf("Contact for phone number %q not found", phoneNumber), nil)
	}

	var dynContact contactDynamo
	err = attributevalue.UnmarshalMap(resp.Item, &dynContact)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal contact from dynamo: %s", err))
	}

	return dynamoToContact(dynContact), nil
}

func (d *DB) PutContact(ctx context.Context, contact registration.Contact) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	item, err := attributevalue.MarshalMap(contactToDynamo(contact))
	if err != nil {
		return registration.NewFailedToTranslateToDBModelError("Failed to convert Contact to contactDynamo", err)
	}

	_, err = d.dynamoClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      item,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return registration.NewTimeoutError("PutContact timed out")
		}
		return registration.NewFailedToWriteError("Failed PutItem call", err)
	}

	return nil
}
