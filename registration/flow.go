package registration

// The wizard's step logic is a pure transition function over a small event
// sum type. Transition decides the next step and which side effects to run;
// the Wizard executes them. Keeping this core pure makes the step rules
// testable without a store, a blob bucket or a gateway.

type Event interface {
	isEvent()
}

// Lookup outcomes, raised from PhoneEntry.
type RegistrationFound struct {
	Status PaymentStatus
}
type ContactMatched struct{}
type NoMatch struct{}

// Per-step submits.
type PersonalInfoSubmitted struct{}
type TravelInfoSubmitted struct{}
type GuestsSubmitted struct{}

// Payment lifecycle.
type CheckoutOpened struct{}
type PaymentConfirmed struct{}
type PaymentDeclined struct{}

// Backward navigation; never persists.
type WentBack struct{}

func (RegistrationFound) isEvent()     {}
func (ContactMatched) isEvent()        {}
func (NoMatch) isEvent()               {}
func (PersonalInfoSubmitted) isEvent() {}
func (TravelInfoSubmitted) isEvent()   {}
func (GuestsSubmitted) isEvent()       {}
func (CheckoutOpened) isEvent()        {}
func (PaymentConfirmed) isEvent()      {}
func (PaymentDeclined) isEvent()       {}
func (WentBack) isEvent()              {}

type Effect int

const (
	EffectUploadPhotos Effect = iota
	EffectPersist
	EffectCreateOrder
	EffectAllocateBarcodes
)

// Transition returns the step that follows ev at step, plus the effects the
// interpreter must run, in order. It returns an INVALID_TRANSITION error for
// events that are not defined at the given step.
func Transition(step Step, ev Event) (Step, []Effect, error) {
	if _, ok := ev.(WentBack); ok {
		return stepBack(step), nil, nil
	}

	switch step {
	case StepPhoneEntry:
		switch e := ev.(type) {
		case RegistrationFound:
			// A pending registration resumes where data entry left off;
			// anything else goes straight to payment to show the stored
			// receipt or retry the charge.
			if e.Status == PAYMENT_PENDING {
				return StepPersonalInfo, nil, nil
			}
			return StepPayment, nil, nil
		case ContactMatched:
			return StepPersonalInfo, nil, nil
		case NoMatch:
			return StepNotFound, nil, nil
		}
	case StepPersonalInfo:
		if _, ok := ev.(PersonalInfoSubmitted); ok {
			return StepTravelInfo, []Effect{EffectUploadPhotos, EffectPersist}, nil
		}
	case StepTravelInfo:
		if _, ok := ev.(TravelInfoSubmitted); ok {
			return StepAdditionalGuests, []Effect{EffectPersist}, nil
		}
	case StepAdditionalGuests:
		if _, ok := ev.(GuestsSubmitted); ok {
			return StepPayment, []Effect{EffectPersist}, nil
		}
	case StepPayment:
		switch ev.(type) {
		case CheckoutOpened:
			return StepPayment, []Effect{EffectCreateOrder, EffectPersist}, nil
		case PaymentConfirmed:
			return StepCompleted, []Effect{EffectAllocateBarcodes, EffectPersist}, nil
		case PaymentDeclined:
			return StepPaymentFailed, []Effect{EffectPersist}, nil
		}
	case StepPaymentFailed:
		switch ev.(type) {
		case CheckoutOpened:
			return StepPayment, []Effect{EffectCreateOrder, EffectPersist}, nil
		case PaymentConfirmed:
			// A success callback can land after a failure was recorded for
			// the same session; the retry path must still complete.
			return StepCompleted, []Effect{EffectAllocateBarcodes, EffectPersist}, nil
		}
	}

	return step, nil, NewInvalidTransitionError(step, ev)
}

func stepBack(step Step) Step {
	switch step {
	case StepPersonalInfo:
		return StepPhoneEntry
	case StepTravelInfo:
		return StepPersonalInfo
	case StepAdditionalGuests:
		return StepTravelInfo
	case StepPayment, StepPaymentFailed:
		return StepAdditionalGuests
	default:
		return step
	}
}
