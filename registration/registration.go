// Package registration holds the domain model for the sammelan registration
// flow: the registration record itself, the wizard that drives a registrant
// through the form steps, and the collaborator interfaces the wizard
// persists and pays through.
package registration

import (
	"context"
	"io"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PAYMENT_PENDING   PaymentStatus = "pending"
	PAYMENT_COMPLETED PaymentStatus = "completed"
	PAYMENT_FAILED    PaymentStatus = "failed"
)

// Guest is an additional person travelling with the registrant. Guests have
// no identity of their own; they live embedded in the registration record.
type Guest struct {
	Name     string
	Relation string
}

// Registration is the one mutable record a registrant accumulates across the
// form steps. It is created when the registrant first advances past phone
// lookup and every later step merges a partial update into the same record,
// keyed by phone number.
type Registration struct {
	ID          uuid.UUID
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

	Guests []Guest

	// PaymentAmount is in rupees; it is always derived from HasSpouse and
	// never taken from user input.
	PaymentAmount int64
	PaymentStatus PaymentStatus
	PaymentID     string
	OrderID       string

	// Barcode identifiers are assigned exactly once, when payment succeeds.
	// SpouseBarcodeID stays empty unless HasSpouse is set.
	PrimaryBarcodeID string
	SpouseBarcodeID  string
	BarcodeNumber    int64

	Step      Step
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Patch is a partial update merged into an existing registration. Nil fields
// are left untouched, so re-applying the same patch is idempotent.
type Patch struct {
	Name           *string
	City           *string
	State          *string
	PhotoURL       *string
	HasSpouse      *bool
	SpouseName     *string
	SpousePhotoURL *string

	ArrivalDate         *string
	ArrivalTime         *string
	ArrivalTravelMode   *string
	DepartureDate       *string
	DepartureTime       *string
	DepartureTravelMode *string

	Guests *[]Guest

	PaymentAmount *int64
	PaymentStatus *PaymentStatus
	PaymentID     *string
	OrderID       *string

	PrimaryBarcodeID *string
	SpouseBarcodeID  *string
	BarcodeNumber    *int64

	Step *Step
}

// applyTo mirrors the store's merge semantics in memory so callers get the
// post-update record back without a second read.
func (p Patch) applyTo(reg *Registration) {
	if p.Name != nil {
		reg.Name = *p.Name
	}
	if p.City != nil {
		reg.City = *p.City
	}
	if p.State != nil {
		reg.State = *p.State
	}
	if p.PhotoURL != nil {
		reg.PhotoURL = *p.PhotoURL
	}
	if p.HasSpouse != nil {
		reg.HasSpouse = *p.HasSpouse
	}
	if p.SpouseName != nil {
		reg.SpouseName = *p.SpouseName
	}
	if p.SpousePhotoURL != nil {
		reg.SpousePhotoURL = *p.SpousePhotoURL
	}
	if p.ArrivalDate != nil {
		reg.ArrivalDate = *p.ArrivalDate
	}
	if p.ArrivalTime != nil {
		reg.ArrivalTime = *p.ArrivalTime
	}
	if p.ArrivalTravelMode != nil {
		reg.ArrivalTravelMode = *p.ArrivalTravelMode
	}
	if p.DepartureDate != nil {
		reg.DepartureDate = *p.DepartureDate
	}
	if p.DepartureTime != nil {
		reg.DepartureTime = *p.DepartureTime
	}
	if p.DepartureTravelMode != nil {
		reg.DepartureTravelMode = *p.DepartureTravelMode
	}
	if p.Guests != nil {
		reg.Guests = *p.Guests
	}
	if p.PaymentAmount != nil {
		reg.PaymentAmount = *p.PaymentAmount
	}
	if p.PaymentStatus != nil {
		reg.PaymentStatus = *p.PaymentStatus
	}
	if p.PaymentID != nil {
		reg.PaymentID = *p.PaymentID
	}
	if p.OrderID != nil {
		reg.OrderID = *p.OrderID
	}
	if p.PrimaryBarcodeID != nil {
		reg.PrimaryBarcodeID = *p.PrimaryBarcodeID
	}
	if p.SpouseBarcodeID != nil {
		reg.SpouseBarcodeID = *p.SpouseBarcodeID
	}
	if p.BarcodeNumber != nil {
		reg.BarcodeNumber = *p.BarcodeNumber
	}
	if p.Step != nil {
		reg.Step = *p.Step
	}
}

type ListRegistrationsResponse struct {
	Data        []Registration
	Cursor      *string
	HasNextPage bool
}

type Repository interface {
	CreateRegistration(ctx context.Context, reg Registration) error
	GetRegistrationByPhone(ctx context.Context, phoneNumber string) (Registration, error)
	UpdateRegistration(ctx context.Context, phoneNumber string, patch Patch) error
	ListRegistrations(ctx context.Context, limit int32, cursor *string) (ListRegistrationsResponse, error)
}

// Contact is an entry in the pre-existing invitee directory, used to preload
// personal fields for people who have not registered yet.
type Contact struct {
	PhoneNumber string
	Name        string
	City        string
	State       string
	SpouseName  string
}

type ContactDirectory interface {
	GetContactByPhone(ctx context.Context, phoneNumber string) (Contact, error)
}

// BlobStore stores uploaded photos and resolves to a publicly retrievable
// URL once the transfer completes.
type BlobStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// Checkout is the payment gateway: server-side order creation plus
// verification of the signed confirmation the gateway posts back.
type Checkout interface {
	CreateOrder(ctx context.Context, amount *money.Money, receipt string) (string, error)
	VerifySignature(orderID, paymentID, signature string) bool
	KeyID() string
}
