package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/soumya-corp/sammelan-registration/registration"
)

type Guest struct {
	Name     string `json:"name"`
	Relation string `json:"relation"`
}

type Registration struct {
	Id          uuid.UUID `json:"id"`
	PhoneNumber string    `json:"phoneNumber"`

	Name           string `json:"name"`
	City           string `json:"city"`
	State          string `json:"state"`
	PhotoUrl       string `json:"photoUrl,omitempty"`
	HasSpouse      bool   `json:"hasSpouse"`
	SpouseName     string `json:"spouseName,omitempty"`
	SpousePhotoUrl string `json:"spousePhotoUrl,omitempty"`

	ArrivalDate         string `json:"arrivalDate,omitempty"`
	ArrivalTime         string `json:"arrivalTime,omitempty"`
	ArrivalTravelMode   string `json:"arrivalTravelMode,omitempty"`
	DepartureDate       string `json:"departureDate,omitempty"`
	DepartureTime       string `json:"departureTime,omitempty"`
	DepartureTravelMode string `json:"departureTravelMode,omitempty"`

	AdditionalGuests []Guest `json:"additionalGuests"`

	PaymentAmount int64  `json:"paymentAmount"`
	PaymentStatus string `json:"paymentStatus"`
	PaymentId     string `json:"paymentId,omitempty"`
	OrderId       string `json:"orderId,omitempty"`

	PrimaryBarcodeId string `json:"primaryBarcodeId,omitempty"`
	SpouseBarcodeId  string `json:"spouseBarcodeId,omitempty"`

	Step      string    `json:"step"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func registrationToApiRegistration(reg registration.Registration) Registration {
	guests := make([]Guest, 0, len(reg.Guests))
	for _, g := range reg.Guests {
		guests = append(guests, Guest{Name: g.Name, Relation: g.Relation})
	}

	return Registration{
		Id:                  reg.ID,
		PhoneNumber:         reg.PhoneNumber,
		Name:                reg.Name,
		City:                reg.City,
		State:               reg.State,
		PhotoUrl:            reg.PhotoURL,
		HasSpouse:           reg.HasSpouse,
		SpouseName:          reg.SpouseName,
		SpousePhotoUrl:      reg.SpousePhotoURL,
		ArrivalDate:         reg.ArrivalDate,
		ArrivalTime:         reg.ArrivalTime,
		ArrivalTravelMode:   reg.ArrivalTravelMode,
		DepartureDate:       reg.DepartureDate,
		DepartureTime:       reg.DepartureTime,
		DepartureTravelMode: reg.DepartureTravelMode,
		AdditionalGuests:    guests,
		PaymentAmount:       reg.PaymentAmount,
		PaymentStatus:       string(reg.PaymentStatus),
		PaymentId:           reg.PaymentID,
		OrderId:             reg.OrderID,
		PrimaryBarcodeId:    reg.PrimaryBarcodeID,
		SpouseBarcodeId:     reg.SpouseBarcodeID,
		Step:                reg.Step.String(),
		CreatedAt:           reg.CreatedAt,
		UpdatedAt:           reg.UpdatedAt,
	}
}
