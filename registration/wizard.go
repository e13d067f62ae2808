package registration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/soumya-corp/sammelan-registration/ptr"
	"github.com/soumya-corp/sammelan-registration/sequence"
)

type LookupOutcome string

const (
	LOOKUP_REGISTRATION LookupOutcome = "REGISTRATION"
	LOOKUP_CONTACT      LookupOutcome = "CONTACT"
	LOOKUP_NONE         LookupOutcome = "NONE"
)

type LookupResult struct {
	Outcome LookupOutcome
	Step    Step

	// Registration carries the preloaded fields: the stored record when
	// Outcome is REGISTRATION, an unsaved prefill when CONTACT, nil when
	// NONE.
	Registration *Registration
}

type PhotoUpload struct {
	Content     io.Reader
	ContentType string
}

type PersonalInfoForm struct {
	Name       string
	City       string
	State      string
	HasSpouse  bool
	SpouseName string

	// Photos are optional when a stored URL already satisfies the step.
	Photo       *PhotoUpload
	SpousePhoto *PhotoUpload
}

type TravelInfoForm struct {
	ArrivalDate         string
	ArrivalTime         string
	ArrivalTravelMode   string
	DepartureDate       string
	DepartureTime       string
	DepartureTravelMode string
}

// CheckoutSession configures the hosted checkout widget on the client.
// Amount is in the gateway's minor unit (paise).
type CheckoutSession struct {
	Key            string
	Amount         int64
	Currency       string
	OrderID        string
	PrefillName    string
	PrefillContact string
}

// Confirmation is the signed success payload the gateway posts back.
type Confirmation struct {
	PaymentID string
	OrderID   string
	Signature string
}

// Wizard drives a registrant through the form steps. Each submit validates,
// runs the effects the transition function dictates, and merges a partial
// update into the one registration record for that phone number.
type Wizard struct {
	repo      Repository
	contacts  ContactDirectory
	blobs     BlobStore
	checkout  Checkout
	allocator *sequence.Allocator
	logger    *slog.Logger

	closeTime time.Time
	now       func() time.Time
}

func NewWizard(repo Repository, contacts ContactDirectory, blobs BlobStore, checkout Checkout, allocator *sequence.Allocator, logger *slog.Logger) *Wizard {
	return &Wizard{
		repo:      repo,
		contacts:  contacts,
		blobs:     blobs,
		checkout:  checkout,
		allocator: allocator,
		logger:    logger,
		now:       time.Now,
	}
}

// SetCloseTime installs the registration deadline. After it, lookups for
// anything but an already-completed registration are refused. The zero value
// means the window never closes.
func (w *Wizard) SetCloseTime(t time.Time) {
	w.closeTime = t
}

func (w *Wizard) closed() bool {
	return !w.closeTime.IsZero() && w.now().After(w.closeTime)
}

// Lookup resolves a phone number to where the flow should (re)enter: the
// stored registration, a prefill from the invitee directory, or the NotFound
// terminal state.
func (w *Wizard) Lookup(ctx context.Context, phoneNumber string) (LookupResult, error) {
	if fieldErrs := ValidatePhoneNumber(phoneNumber); fieldErrs != nil {
		return LookupResult{}, NewValidationError(fieldErrs)
	}

	reg, err := w.repo.GetRegistrationByPhone(ctx, phoneNumber)
	switch {
	case err == nil:
		if w.closed() && reg.PaymentStatus != PAYMENT_COMPLETED {
			return LookupResult{}, NewRegistrationClosedError("Registration is closed")
		}

		next, _, err := Transition(StepPhoneEntry, RegistrationFound{Status: reg.PaymentStatus})
		if err != nil {
			return LookupResult{}, err
		}
		return LookupResult{Outcome: LOOKUP_REGISTRATION, Step: next, Registration: &reg}, nil
	case !isReason(err, REASON_REGISTRATION_DOES_NOT_EXIST):
		return LookupResult{}, err
	}

	if w.closed() {
		return LookupResult{}, NewRegistrationClosedError("Registration is closed")
	}

	contact, err := w.contacts.GetContactByPhone(ctx, phoneNumber)
	switch {
	case err == nil:
		next, _, err := Transition(StepPhoneEntry, ContactMatched{})
		if err != nil {
			return LookupResult{}, err
		}

		prefill := Registration{
			PhoneNumber:   phoneNumber,
			Name:          contact.Name,
			City:          contact.City,
			State:         contact.State,
			SpouseName:    contact.SpouseName,
			PaymentAmount: FeeRupees(false),
			PaymentStatus: PAYMENT_PENDING,
			Step:          next,
		}
		return LookupResult{Outcome: LOOKUP_CONTACT, Step: next, Registration: &prefill}, nil
	case !isReason(err, REASON_CONTACT_DOES_NOT_EXIST):
		return LookupResult{}, err
	}

	next, _, err := Transition(StepPhoneEntry, NoMatch{})
	if err != nil {
		return LookupResult{}, err
	}
	return LookupResult{Outcome: LOOKUP_NONE, Step: next}, nil
}

// SubmitPersonalInfo uploads any newly selected photos, then creates the
// registration record if this is the first persisted step or merges into the
// existing one.
func (w *Wizard) SubmitPersonalInfo(ctx context.Context, phoneNumber string, form PersonalInfoForm) (Registration, error) {
	if fieldErrs := ValidatePhoneNumber(phoneNumber); fieldErrs != nil {
		return Registration{}, NewValidationError(fieldErrs)
	}

	var existing *Registration
	stored, err := w.repo.GetRegistrationByPhone(ctx, phoneNumber)
	switch {
	case err == nil:
		if stored.PaymentStatus == PAYMENT_COMPLETED {
			return Registration{}, NewAlreadyCompletedError(phoneNumber)
		}
		existing = &stored
	case !isReason(err, REASON_REGISTRATION_DOES_NOT_EXIST):
		return Registration{}, err
	}

	if fieldErrs := validatePersonalInfo(form, existing); fieldErrs != nil {
		return Registration{}, NewValidationError(fieldErrs)
	}

	next, effects, err := Transition(StepPersonalInfo, PersonalInfoSubmitted{})
	if err != nil {
		return Registration{}, err
	}

	var photoURL, spousePhotoURL string
	for _, effect := range effects {
		switch effect {
		case EffectUploadPhotos:
			photoURL, spousePhotoURL, err = w.uploadPhotos(ctx, phoneNumber, form)
			if err != nil {
				return Registration{}, err
			}
		case EffectPersist:
			if existing == nil {
				created, err := w.createRegistration(ctx, phoneNumber, form, photoURL, spousePhotoURL, next)
				if err != nil {
					return Registration{}, err
				}
				return created, nil
			}

			patch := personalInfoPatch(form, photoURL, spousePhotoURL, next)
			if err := w.repo.UpdateRegistration(ctx, phoneNumber, patch); err != nil {
				return Registration{}, err
			}
			patch.applyTo(existing)
			return *existing, nil
		}
	}

	return Registration{}, fmt.Errorf("personal info transition produced no persist effect")
}

func (w *Wizard) uploadPhotos(ctx context.Context, phoneNumber string, form PersonalInfoForm) (photoURL, spousePhotoURL string, err error) {
	if form.Photo != nil {
		photoURL, err = w.blobs.Upload(ctx, photoKey(phoneNumber, w.now()), form.Photo.Content, form.Photo.ContentType)
		if err != nil {
			return "", "", NewUploadFailedError("Failed to upload photo", err)
		}
	}
	if form.HasSpouse && form.SpousePhoto != nil {
		spousePhotoURL, err = w.blobs.Upload(ctx, photoKey(phoneNumber+"_spouse", w.now()), form.SpousePhoto.Content, form.SpousePhoto.ContentType)
		if err != nil {
			return "", "", NewUploadFailedError("Failed to upload spouse photo", err)
		}
	}
	return photoURL, spousePhotoURL, nil
}

func photoKey(name string, t time.Time) string {
	return fmt.Sprintf("photos/%s_%d", name, t.UnixMilli())
}

func (w *Wizard) createRegistration(ctx context.Context, phoneNumber string, form PersonalInfoForm, photoURL, spousePhotoURL string, next Step) (Registration, error) {
	now := w.now()
	reg := Registration{
		ID:            uuid.New(),
		PhoneNumber:   phoneNumber,
		Name:          form.Name,
		City:          form.City,
		State:         form.State,
		PhotoURL:      photoURL,
		HasSpouse:     form.HasSpouse,
		Guests:        []Guest{},
		PaymentAmount: FeeRupees(form.HasSpouse),
		PaymentStatus: PAYMENT_PENDING,
		Step:          next,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if form.HasSpouse {
		reg.SpouseName = form.SpouseName
		reg.SpousePhotoURL = spousePhotoURL
	}

	if err := w.repo.CreateRegistration(ctx, reg); err != nil {
		return Registration{}, err
	}
	return reg, nil
}

func personalInfoPatch(form PersonalInfoForm, photoURL, spousePhotoURL string, next Step) Patch {
	patch := Patch{
		Name:          ptr.String(form.Name),
		City:          ptr.String(form.City),
		State:         ptr.String(form.State),
		HasSpouse:     ptr.Bool(form.HasSpouse),
		PaymentAmount: ptr.Int64(FeeRupees(form.HasSpouse)),
		Step:          stepPtr(next),
	}
	if photoURL != "" {
		patch.PhotoURL = ptr.String(photoURL)
	}
	if form.HasSpouse {
		patch.SpouseName = ptr.String(form.SpouseName)
		if spousePhotoURL != "" {
			patch.SpousePhotoURL = ptr.String(spousePhotoURL)
		}
	} else {
		patch.SpouseName = ptr.String("")
		patch.SpousePhotoURL = ptr.String("")
	}
	return patch
}

// SubmitTravelInfo merges the travel fields into the existing registration.
func (w *Wizard) SubmitTravelInfo(ctx context.Context, phoneNumber string, form TravelInfoForm) (Registration, error) {
	reg, err := w.repo.GetRegistrationByPhone(ctx, phoneNumber)
	if err != nil {
		return Registration{}, err
	}
	if reg.PaymentStatus == PAYMENT_COMPLETED {
		return Registration{}, NewAlreadyCompletedError(phoneNumber)
	}

	if fieldErrs := validateTravelInfo(form); fieldErrs != nil {
		return Registration{}, NewValidationError(fieldErrs)
	}

	next, _, err := Transition(StepTravelInfo, TravelInfoSubmitted{})
	if err != nil {
		return Registration{}, err
	}

	patch := Patch{
		ArrivalDate:         ptr.String(form.ArrivalDate),
		ArrivalTime:         ptr.String(form.ArrivalTime),
		ArrivalTravelMode:   ptr.String(form.ArrivalTravelMode),
		DepartureDate:       ptr.String(form.DepartureDate),
		DepartureTime:       ptr.String(form.DepartureTime),
		DepartureTravelMode: ptr.String(form.DepartureTravelMode),
		Step:                stepPtr(next),
	}
	if err := w.repo.UpdateRegistration(ctx, phoneNumber, patch); err != nil {
		return Registration{}, err
	}
	patch.applyTo(&reg)
	return reg, nil
}

// SubmitGuests merges the additional-guest list; an empty list is valid.
func (w *Wizard) SubmitGuests(ctx context.Context, phoneNumber string, guests []Guest) (Registration, error) {
	reg, err := w.repo.GetRegistrationByPhone(ctx, phoneNumber)
	if err != nil {
		return Registration{}, err
	}
	if reg.PaymentStatus == PAYMENT_COMPLETED {
		return Registration{}, NewAlreadyCompletedError(phoneNumber)
	}

	if fieldErrs := validateGuests(guests); fieldErrs != nil {
		return Registration{}, NewValidationError(fieldErrs)
	}

	next, _, err := Transition(StepAdditionalGuests, GuestsSubmitted{})
	if err != nil {
		return Registration{}, err
	}

	if guests == nil {
		guests = []Guest{}
	}
	patch := Patch{
		Guests: &guests,
		Step:   stepPtr(next),
	}
	if err := w.repo.UpdateRegistration(ctx, phoneNumber, patch); err != nil {
		return Registration{}, err
	}
	patch.applyTo(&reg)
	return reg, nil
}

// StartCheckout opens a gateway order for the derived fee and stores the
// order id on the registration. Re-invoking it after a failure reuses the
// same registration record.
func (w *Wizard) StartCheckout(ctx context.Context, phoneNumber string) (CheckoutSession, error) {
	reg, err := w.repo.GetRegistrationByPhone(ctx, phoneNumber)
	if err != nil {
		return CheckoutSession{}, err
	}
	if reg.PaymentStatus == PAYMENT_COMPLETED {
		return CheckoutSession{}, NewAlreadyCompletedError(phoneNumber)
	}

	next, _, err := Transition(paymentStep(reg), CheckoutOpened{})
	if err != nil {
		return CheckoutSession{}, err
	}

	amount := Fee(reg.HasSpouse)
	orderID, err := w.checkout.CreateOrder(ctx, amount, reg.ID.String())
	if err != nil {
		return CheckoutSession{}, NewCheckoutFailedError("Failed to create gateway order", err)
	}

	pending := PAYMENT_PENDING
	patch := Patch{
		OrderID:       ptr.String(orderID),
		PaymentStatus: &pending,
		PaymentAmount: ptr.Int64(amount.Amount() / 100),
		Step:          stepPtr(next),
	}
	if err := w.repo.UpdateRegistration(ctx, phoneNumber, patch); err != nil {
		return CheckoutSession{}, err
	}

	return CheckoutSession{
		Key:            w.checkout.KeyID(),
		Amount:         amount.Amount(),
		Currency:       amount.Currency().Code,
		OrderID:        orderID,
		PrefillName:    reg.Name,
		PrefillContact: phoneNumber,
	}, nil
}

// ConfirmPayment verifies the gateway's signature, allocates the barcode
// pair and records the registration as completed. A duplicate confirmation
// for an already-completed registration is a no-op; barcodes are never
// allocated twice.
func (w *Wizard) ConfirmPayment(ctx context.Context, phoneNumber string, conf Confirmation) (Registration, error) {
	reg, err := w.repo.GetRegistrationByPhone(ctx, phoneNumber)
	if err != nil {
		return Registration{}, err
	}
	if reg.PaymentStatus == PAYMENT_COMPLETED {
		return reg, nil
	}

	// The callback must reference the order opened for this registration; a
	// signature alone only proves the triple came from the gateway, not that
	// it belongs to this phone number.
	if reg.OrderID == "" || conf.OrderID != reg.OrderID {
		return Registration{}, NewPaymentRejectedError("Payment confirmation does not match the registration's order")
	}

	if !w.checkout.VerifySignature(conf.OrderID, conf.PaymentID, conf.Signature) {
		return Registration{}, NewPaymentRejectedError("Payment signature verification failed")
	}

	next, effects, err := Transition(paymentStep(reg), PaymentConfirmed{})
	if err != nil {
		return Registration{}, err
	}

	completed := PAYMENT_COMPLETED
	patch := Patch{
		PaymentID:     ptr.String(conf.PaymentID),
		OrderID:       ptr.String(conf.OrderID),
		PaymentStatus: &completed,
		Step:          stepPtr(next),
	}
	for _, effect := range effects {
		if effect != EffectAllocateBarcodes {
			continue
		}
		if reg.PrimaryBarcodeID != "" {
			break
		}

		alloc := w.allocator.Allocate(ctx)
		patch.PrimaryBarcodeID = ptr.String(alloc.Primary)
		patch.BarcodeNumber = ptr.Int64(alloc.Number)
		if reg.HasSpouse {
			patch.SpouseBarcodeID = ptr.String(alloc.Spouse)
		}

		w.logger.Info("barcodes allocated",
			slog.String("phoneNumber", phoneNumber),
			slog.String("primaryBarcodeId", alloc.Primary),
			slog.Bool("fallback", alloc.Fallback),
		)
	}

	if err := w.repo.UpdateRegistration(ctx, phoneNumber, patch); err != nil {
		return Registration{}, err
	}
	patch.applyTo(&reg)
	return reg, nil
}

// FailPayment records a gateway-reported failure or abandoned checkout. The
// registration stays retryable; a later success callback for the same
// session still completes it.
func (w *Wizard) FailPayment(ctx context.Context, phoneNumber string, description string) (Registration, error) {
	reg, err := w.repo.GetRegistrationByPhone(ctx, phoneNumber)
	if err != nil {
		return Registration{}, err
	}
	if reg.PaymentStatus == PAYMENT_COMPLETED || reg.PaymentStatus == PAYMENT_FAILED {
		return reg, nil
	}

	next, _, err := Transition(paymentStep(reg), PaymentDeclined{})
	if err != nil {
		return Registration{}, err
	}

	w.logger.Warn("payment failed",
		slog.String("phoneNumber", phoneNumber),
		slog.String("description", description),
	)

	failed := PAYMENT_FAILED
	patch := Patch{
		PaymentStatus: &failed,
		Step:          stepPtr(next),
	}
	if err := w.repo.UpdateRegistration(ctx, phoneNumber, patch); err != nil {
		return Registration{}, err
	}
	patch.applyTo(&reg)
	return reg, nil
}

// paymentStep normalizes the persisted step for payment-phase transitions;
// records written before the payment phase still accept a checkout once the
// client reaches it.
func paymentStep(reg Registration) Step {
	if reg.Step == StepPaymentFailed {
		return StepPaymentFailed
	}
	return StepPayment
}

func stepPtr(s Step) *Step {
	return &s
}

func isReason(err error, reason ErrorReason) bool {
	var regErr *Error
	if errors.As(err, &regErr) {
		return regErr.Reason == reason
	}
	return false
}
