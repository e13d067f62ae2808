package registration

// Step is one stage of the registration wizard. PhoneEntry through Payment
// form the forward path; Completed, PaymentFailed and NotFound are reached
// by payment and lookup outcomes.
type Step int

const (
	StepPhoneEntry Step = iota
	StepPersonalInfo
	StepTravelInfo
	StepAdditionalGuests
	StepPayment
	StepPaymentFailed
	StepCompleted
	StepNotFound
)

func (s Step) String() string {
	switch s {
	case StepPhoneEntry:
		return "PHONE_ENTRY"
	case StepPersonalInfo:
		return "PERSONAL_INFO"
	case StepTravelInfo:
		return "TRAVEL_INFO"
	case StepAdditionalGuests:
		return "ADDITIONAL_GUESTS"
	case StepPayment:
		return "PAYMENT"
	case StepPaymentFailed:
		return "PAYMENT_FAILED"
	case StepCompleted:
		return "COMPLETED"
	case StepNotFound:
		return "NOT_FOUND"
	default:
		return "UNKNOWN"
	}
}

// StepFromString is the inverse of String, used when reading persisted
// records. Unknown values map to PhoneEntry so a damaged record restarts the
// flow instead of wedging it.
func StepFromString(s string) Step {
	switch s {
	case "PHONE_ENTRY":
		return StepPhoneEntry
	case "PERSONAL_INFO":
		return StepPersonalInfo
	case "TRAVEL_INFO":
		return StepTravelInfo
	case "ADDITIONAL_GUESTS":
		return StepAdditionalGuests
	case "PAYMENT":
		return StepPayment
	case "PAYMENT_FAILED":
		return StepPaymentFailed
	case "COMPLETED":
		return StepCompleted
	case "NOT_FOUND":
		return StepNotFound
	default:
		return StepPhoneEntry
	}
}
