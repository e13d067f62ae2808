package registration

import (
	"fmt"
	"time"
	"unicode"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// FieldErrors maps a form field name to its inline message. Validation
// failures block the step transition; nothing is persisted.
type FieldErrors map[string]string

func ValidatePhoneNumber(phoneNumber string) FieldErrors {
	if len(phoneNumber) != 10 {
		return FieldErrors{"phoneNumber": "Phone number must be 10 digits"}
	}
	for _, r := range phoneNumber {
		if !unicode.IsDigit(r) {
			return FieldErrors{"phoneNumber": "Phone number must contain only digits"}
		}
	}
	return nil
}

func validatePersonalInfo(form PersonalInfoForm, existing *Registration) FieldErrors {
	errs := FieldErrors{}

	if form.Name == "" {
		errs["name"] = "Name is required"
	}
	if form.City == "" {
		errs["city"] = "City is required"
	}
	if form.State == "" {
		errs["state"] = "State is required"
	}

	// A photo is required per person, but an already stored one satisfies
	// the requirement on resume.
	if form.Photo == nil && !hasStoredPhoto(existing) {
		errs["photo"] = "Photo is required"
	}
	if form.HasSpouse {
		if form.SpouseName == "" {
			errs["spouseName"] = "Spouse name is required"
		}
		if form.SpousePhoto == nil && !hasStoredSpousePhoto(existing) {
			errs["spousePhoto"] = "Spouse photo is required"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func hasStoredPhoto(reg *Registration) bool {
	return reg != nil && reg.PhotoURL != ""
}

func hasStoredSpousePhoto(reg *Registration) bool {
	return reg != nil && reg.SpousePhotoURL != ""
}

func validateTravelInfo(form TravelInfoForm) FieldErrors {
	errs := FieldErrors{}

	arrivalDate, ok := requireDate(errs, "arrivalDate", form.ArrivalDate)
	arrivalOK := ok
	arrivalTime, ok := requireTime(errs, "arrivalTime", form.ArrivalTime)
	arrivalOK = arrivalOK && ok
	departureDate, ok := requireDate(errs, "departureDate", form.DepartureDate)
	departureOK := ok
	departureTime, ok := requireTime(errs, "departureTime", form.DepartureTime)
	departureOK = departureOK && ok

	if form.ArrivalTravelMode == "" {
		errs["arrivalTravelMode"] = "Arrival travel mode is required"
	}
	if form.DepartureTravelMode == "" {
		errs["departureTravelMode"] = "Departure travel mode is required"
	}

	// Same-day departures must leave strictly after they arrive. Different
	// calendar dates are accepted regardless of times.
	if arrivalOK && departureOK && departureDate.Equal(arrivalDate) && !departureTime.After(arrivalTime) {
		errs["departureTime"] = "Departure time must be after arrival time on the same date"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func requireDate(errs FieldErrors, field, value string) (time.Time, bool) {
	if value == "" {
		errs[field] = "Date is required"
		return time.Time{}, false
	}
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		errs[field] = "Date must be in YYYY-MM-DD format"
		return time.Time{}, false
	}
	return d, true
}

func requireTime(errs FieldErrors, field, value string) (time.Time, bool) {
	if value == "" {
		errs[field] = "Time is required"
		return time.Time{}, false
	}
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		errs[field] = "Time must be in HH:MM format"
		return time.Time{}, false
	}
	return t, true
}

func validateGuests(guests []Guest) FieldErrors {
	for i, g := range guests {
		if g.Name == "" {
			return FieldErrors{"guests": guestFieldMessage(i, "name")}
		}
		if g.Relation == "" {
			return FieldErrors{"guests": guestFieldMessage(i, "relation")}
		}
	}
	return nil
}

func guestFieldMessage(index int, field string) string {
	return fmt.Sprintf("Guest %d: %s is required", index+1, field)
}
