package api

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/Rhymond/go-money"

	"github.com/soumya-corp/sammelan-registration/registration"
	"github.com/soumya-corp/sammelan-registration/sequence"
)

var noopLogger = slog.New(slog.DiscardHandler)

var _ DB = &mockDB{}

type mockDB struct {
	CreateRegistrationFunc     func(ctx context.Context, reg registration.Registration) error
	GetRegistrationByPhoneFunc func(ctx context.Context, phoneNumber string) (registration.Registration, error)
	UpdateRegistrationFunc     func(ctx context.Context, phoneNumber string, patch registration.Patch) error
	ListRegistrationsFunc      func(ctx context.Context, limit int32, cursor *string) (registration.ListRegistrationsResponse, error)
}

func (m *mockDB) CreateRegistration(ctx context.Context, reg registration.Registration) error {
	if m.CreateRegistrationFunc != nil {
		return m.CreateRegistrationFunc(ctx, reg)
	}
	return nil
}

func (m *mockDB) GetRegistrationByPhone(ctx context.Context, phoneNumber string) (registration.Registration, error) {
	if m.GetRegistrationByPhoneFunc != nil {
		return m.GetRegistrationByPhoneFunc(ctx, phoneNumber)
	}
	return registration.Registration{}, registration.NewRegistrationDoesNotExistError("not found", nil)
}

func (m *mockDB) UpdateRegistration(ctx context.Context, phoneNumber string, patch registration.Patch) error {
	if m.UpdateRegistrationFunc != nil {
		return m.UpdateRegistrationFunc(ctx, phoneNumber, patch)
	}
	return nil
}

func (m *mockDB) ListRegistrations(ctx context.Context, limit int32, cursor *string) (registration.ListRegistrationsResponse, error) {
	if m.ListRegistrationsFunc != nil {
		return m.ListRegistrationsFunc(ctx, limit, cursor)
	}
	return registration.ListRegistrationsResponse{}, nil
}

type mockContacts struct {
	GetContactByPhoneFunc func(ctx context.Context, phoneNumber string) (registration.Contact, error)
}

func (m *mockContacts) GetContactByPhone(ctx context.Context, phoneNumber string) (registration.Contact, error) {
	if m.GetContactByPhoneFunc != nil {
		return m.GetContactByPhoneFunc(ctx, phoneNumber)
	}
	return registration.Contact{}, registration.NewContactDoesNotExistError("not found", nil)
}

type mockBlobs struct {
	UploadFunc func(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

func (m *mockBlobs) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, key, body, contentType)
	}
	return "https://blobs.test/" + key, nil
}

type mockCheckout struct {
	CreateOrderFunc     func(ctx context.Context, amount *money.Money, receipt string) (string, error)
	VerifySignatureFunc func(orderID, paymentID, signature string) bool
}

func (m *mockCheckout) CreateOrder(ctx context.Context, amount *money.Money, receipt string) (string, error) {
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, amount, receipt)
	}
	return "order_test", nil
}

func (m *mockCheckout) VerifySignature(orderID, paymentID, signature string) bool {
	if m.VerifySignatureFunc != nil {
		return m.VerifySignatureFunc(orderID, paymentID, signature)
	}
	return signature == "valid"
}

func (m *mockCheckout) KeyID() string {
	return "rzp_test_key"
}

type memCounter struct {
	mu    sync.Mutex
	count int64
}

func (c *memCounter) Increment(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	return c.count, nil
}

type apiFixture struct {
	api      *API
	db       *mockDB
	contacts *mockContacts
	blobs    *mockBlobs
	checkout *mockCheckout
}

func newAPIFixture() *apiFixture {
	f := &apiFixture{
		db:       &mockDB{},
		contacts: &mockContacts{},
		blobs:    &mockBlobs{},
		checkout: &mockCheckout{},
	}

	wizard := registration.NewWizard(
		f.db,
		f.contacts,
		f.blobs,
		f.checkout,
		sequence.NewAllocator(&memCounter{}, noopLogger),
		noopLogger,
	)
	f.api = NewAPI(wizard, f.db, noopLogger, LOCAL, "")

	return f
}
