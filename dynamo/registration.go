package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/soumya-corp/sammelan-registration/registration"
)

var _ registration.Repository = &DB{}

type guestDynamo struct {
	Name     string
	Relation string
}

type registrationDynamo struct {
	PK     string
	SK     string
	GSI1PK string
	GSI1SK string

	ID          string
	PhoneNumber string

	Name           string
	City           string
	State          string
	PhotoURL       string
	HasSpouse      bool
	SpouseName     string
	SpousePhotoURL string

	ArrivalDate         string
	ArrivalTime         string
	ArrivalTravelMode   string
	DepartureDate       string
	DepartureTime       string
	DepartureTravelMode string

	Guests []guestDynamo

	PaymentAmount int64
	PaymentStatus string
	PaymentID     string
	OrderID       string

	PrimaryBarcodeID string
	SpouseBarcodeID  string
	BarcodeNumber    int64

	Step      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	registrationEntityName = "REGISTRATION"
	phoneEntityName        = "PHONE"
)

func registrationPK(phoneNumber string) string {
	return fmt.Sprintf("%s#%s", phoneEntityName, phoneNumber)
}

func registrationSK() string {
	return registrationEntityName
}

// registrationGSI1SK keys the listing index by creation order; the ID breaks
// ties between registrations created in the same instant.
func registrationGSI1SK(createdAt time.Time, id uuid.UUID) string {
	return fmt.Sprintf("%s#%s", createdAt.UTC().Format(time.RFC3339Nano), id)
}

func registrationToDynamo(reg registration.Registration) registrationDynamo {
	return registrationDynamo{
		PK:                  registrationPK(reg.PhoneNumber),
		SK:                  registrationSK(),
		GSI1PK:              registrationEntityName,
		GSI1SK:              registrationGSI1SK(reg.CreatedAt, reg.ID),
		ID:                  reg.ID.String(),
		PhoneNumber:         reg.PhoneNumber,
		Name:                reg.Name,
		City:                reg.City,
		State:               reg.State,
		PhotoURL:            reg.PhotoURL,
		HasSpouse:           reg.HasSpouse,
		SpouseName:          reg.SpouseName,
		SpousePhotoURL:      reg.SpousePhotoURL,
		ArrivalDate:         reg.ArrivalDate,
		ArrivalTime:         reg.ArrivalTime,
		ArrivalTravelMode:   reg.ArrivalTravelMode,
		DepartureDate:       reg.DepartureDate,
		DepartureTime:       reg.DepartureTime,
		DepartureTravelMode: reg.DepartureTravelMode,
		Guests:              guestsToDynamo(reg.Guests),
		PaymentAmount:       reg.PaymentAmount,
		PaymentStatus:       string(reg.PaymentStatus),
		PaymentID:           reg.PaymentID,
		OrderID:             reg.OrderID,
		PrimaryBarcodeID:    reg.PrimaryBarcodeID,
		SpouseBarcodeID:     reg.SpouseBarcodeID,
		BarcodeNumber:       reg.BarcodeNumber,
		Step:                reg.Step.String(),
		CreatedAt:           reg.CreatedAt,
		UpdatedAt:           reg.UpdatedAt,
	}
}

func dynamoToRegistration(dynReg registrationDynamo) registration.Registration {
	return registration.Registration{
		ID:                  uuid.MustParse(dynReg.ID),
		PhoneNumber:         dynReg.PhoneNumber,
		Name:                dynReg.Name,
		City:                dynReg.City,
		State:               dynReg.State,
		PhotoURL:            dynReg.PhotoURL,
		HasSpouse:           dynReg.HasSpouse,
		SpouseName:          dynReg.SpouseName,
		SpousePhotoURL:      dynReg.SpousePhotoURL,
		ArrivalDate:         dynReg.ArrivalDate,
		ArrivalTime:         dynReg.ArrivalTime,
		ArrivalTravelMode:   dynReg.ArrivalTravelMode,
		DepartureDate:       dynReg.DepartureDate,
		DepartureTime:       dynReg.DepartureTime,
		DepartureTravelMode: dynReg.DepartureTravelMode,
		Guests:              dynamoToGuests(dynReg.Guests),
		PaymentAmount:       dynReg.PaymentAmount,
		PaymentStatus:       registration.PaymentStatus(dynReg.PaymentStatus),
		PaymentID:           dynReg.PaymentID,
		OrderID:             dynReg.OrderID,
		PrimaryBarcodeID:    dynReg.PrimaryBarcodeID,
		SpouseBarcodeID:     dynReg.SpouseBarcodeID,
		BarcodeNumber:       dynReg.BarcodeNumber,
		Step:                registration.StepFromString(dynReg.Step),
		CreatedAt:           dynReg.CreatedAt,
		UpdatedAt:           dynReg.UpdatedAt,
	}
}

func guestsToDynamo(guests []registration.Guest) []guestDynamo {
	out := make([]guestDynamo, 0, len(guests))
	for _, g := range guests {
		out = append(out, guestDynamo{Name: g.Name, Relation: g.Relation})
	}
	return out
}

func dynamoToGuests(guests []guestDynamo) []registration.Guest {
	out := make([]registration.Guest, 0, len(guests))
	for _, g := range guests {
		out = append(out, registration.Guest{Name: g.Name, Relation: g.Relation})
	}
	return out
}

func (d *DB) CreateRegistration(ctx context.Context, reg registration.Registration) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	dynamoReg := registrationToDynamo(reg)

	item, err := attributevalue.MarshalMap(dynamoReg)
	if err != nil {
		return registration.NewFailedToTranslateToDBModelError("Failed to convert Registration to registrationDynamo", err)
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
			return registration.NewRegistrationAlreadyExistsError(fmt.Sprintf("Registration for phone number %q already exists", reg.PhoneNumber), err)
		} else if errors.Is(err, context.DeadlineExceeded) {
			return registration.NewTimeoutError("CreateRegistration timed out")
		} else {
			return registration.NewFailedToWriteError("Failed PutItem call", err)
		}
	}

	return nil
}

func (d *DB) GetRegistrationByPhone(ctx context.Context, phoneNumber string) (registration.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	resp, err := d.dynamoClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: registrationPK(phoneNumber)},
			"SK": &types.AttributeValueMemberS{Value: registrationSK()},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return registration.Registration{}, registration.NewTimeoutError("GetRegistrationByPhone timed out")
		}
		return registration.Registration{}, registration.NewFailedToFetchError(fmt.Sprintf("Failed to fetch registration for phone number %q", phoneNumber), err)
	}

	if len(resp.Item) == 0 {
		return registration.Registration{}, registration.NewRegistrationDoesNotExistError(fmt.Sprintf("Registration for phone number %q not found", phoneNumber), nil)
	}

	var dynReg registrationDynamo
	err = attributevalue.UnmarshalMap(resp.Item, &dynReg)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal registration from dynamo: %s", err))
	}

	return dynamoToRegistration(dynReg), nil
}

// UpdateRegistration merges the non-nil patch fields into the stored item
// with a single UpdateItem. Untouched attributes keep their stored values,
// which is what lets a step be resubmitted without clobbering later steps.
func (d *DB) UpdateRegistration(ctx context.Context, phoneNumber string, patch registration.Patch) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	expr := exprMustBuild(expression.NewBuilder().
		WithUpdate(patchToUpdate(patch, time.Now())).
		WithCondition(existingEntityConditional()))

	_, err := d.dynamoClient.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: registrationPK(phoneNumber)},
			"SK": &types.AttributeValueMemberS{Value: registrationSK()},
		},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condCheckFailedErr *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailedErr) {
			return registration.NewRegistrationDoesNotExistError(fmt.Sprintf("Registration for phone number %q does not exist", phoneNumber), err)
		} else if errors.Is(err, context.DeadlineExceeded) {
			return registration.NewTimeoutError("UpdateRegistration timed out")
		} else {
			return registration.NewFailedToWriteError("Failed UpdateItem call", err)
		}
	}

	return nil
}

func patchToUpdate(patch registration.Patch, now time.Time) expression.UpdateBuilder {
	update := expression.Set(expression.Name("UpdatedAt"), expression.Value(now))

	setString := func(name string, value *string) {
		if value != nil {
			update = update.Set(expression.Name(name), expression.Value(*value))
		}
	}

	setString("Name", patch.Name)
	setString("City", patch.City)
	setString("State", patch.State)
	setString("PhotoURL", patch.PhotoURL)
	setString("SpouseName", patch.SpouseName)
	setString("SpousePhotoURL", patch.SpousePhotoURL)
	setString("ArrivalDate", patch.ArrivalDate)
	setString("ArrivalTime", patch.ArrivalTime)
	setString("ArrivalTravelMode", patch.ArrivalTravelMode)
	setString("DepartureDate", patch.DepartureDate)
	setString("DepartureTime", patch.DepartureTime)
	setString("DepartureTravelMode", patch.DepartureTravelMode)
	setString("PaymentID", patch.PaymentID)
	setString("OrderID", patch.OrderID)
	setString("PrimaryBarcodeID", patch.PrimaryBarcodeID)
	setString("SpouseBarcodeID", patch.SpouseBarcodeID)

	if patch.HasSpouse != nil {
		update = update.Set(expression.Name("HasSpouse"), expression.Value(*patch.HasSpouse))
	}
	if patch.Guests != nil {
		update = update.Set(expression.Name("Guests"), expression.Value(guestsToDynamo(*patch.Guests)))
	}
	if patch.PaymentAmount != nil {
		update = update.Set(expression.Name("PaymentAmount"), expression.Value(*patch.PaymentAmount))
	}
	if patch.PaymentStatus != nil {
		update = update.Set(expression.Name("PaymentStatus"), expression.Value(string(*patch.PaymentStatus)))
	}
	if patch.BarcodeNumber != nil {
		update = update.Set(expression.Name("BarcodeNumber"), expression.Value(*patch.BarcodeNumber))
	}
	if patch.Step != nil {
		update = update.Set(expression.Name("Step"), expression.Value(patch.Step.String()))
	}

	return update
}

func (d *DB) ListRegistrations(ctx context.Context, limit int32, cursor *string) (registration.ListRegistrationsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	keyCond := expression.Key("GSI1PK").Equal(expression.Value(registrationEntityName))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build dynamo key expression: %s", err))
	}

	var startKey map[string]types.AttributeValue
	if cursor != nil {
		startKey, err = cursorToLastEval(*cursor)
		if err != nil {
			return registration.ListRegistrationsResponse{}, registration.NewInvalidCursorError("Invalid cursor", err)
		}
	}

	result, err := d.dynamoClient.Query(ctx, &dynamodb.QueryInput{
		IndexName:                 aws.String(gsi1),
		TableName:                 aws.String(d.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		// Oldest registration first, matching barcode allocation order
		ScanIndexForward: aws.Bool(true),
		// Fetch 1 more than limit to check if there is another page or not
		Limit:             aws.Int32(limit + 1),
		ExclusiveStartKey: startKey,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return registration.ListRegistrationsResponse{}, registration.NewTimeoutError("ListRegistrations timed out")
		}
		return registration.ListRegistrationsResponse{}, registration.NewFailedToFetchError("Failed to fetch registrations from dynamo", err)
	}

	var dynamoItems []registrationDynamo
	err = attributevalue.UnmarshalListOfMaps(result.Items, &dynamoItems)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal dynamo registrations: %s", err))
	}

	hasNextPage := len(dynamoItems) > int(limit)

	var newCursor *string
	if hasNextPage && len(result.LastEvaluatedKey) > 0 {
		// Can't use LastEvalKey directly because we grabbed an extra item to check for next page
		lastItemGivenToUser := result.Items[len(result.Items)-2]
		lastItemKey := getKeyFromItem(result.LastEvaluatedKey, lastItemGivenToUser)
		c, err := lastEvalKeyToCursor(lastItemKey)
		if err != nil {
			panic(fmt.Sprintf("failed to make cursor from lastEvalKey: %s", err))
		}
		newCursor = &c
	}

	data := make([]registration.Registration, 0, min(int(limit), len(dynamoItems)))
	for _, item := range dynamoItems[:min(int(limit), len(dynamoItems))] {
		data = append(data, dynamoToRegistration(item))
	}

	return registration.ListRegistrationsResponse{
		Data:        data,
		Cursor:      newCursor,
		HasNextPage: hasNextPage,
	}, nil
}
