package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/soumya-corp/sammelan-registration/registration"
)

// Photos arrive as multipart file parts; anything past 10MiB total is
// rejected before it reaches the blob store.
const maxPersonalInfoFormSize = 10 << 20

func (a *API) putPersonalInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)
	phoneNumber := r.PathValue("phoneNumber")

	if err := r.ParseMultipartForm(maxPersonalInfoFormSize); err != nil {
		logger.Warn("Invalid multipart form for personal info", "error", err)

		a.writeError(w, http.StatusBadRequest, Error{
			Code:    InvalidBody,
			Message: "Expected a multipart form",
		})
		return
	}

	form := registration.PersonalInfoForm{
		Name:       r.FormValue("name"),
		City:       r.FormValue("city"),
		State:      r.FormValue("state"),
		HasSpouse:  r.FormValue("hasSpouse") == "true",
		SpouseName: r.FormValue("spouseName"),
	}

	photo, err := formPhoto(r, "photo")
	if err != nil {
		a.writeError(w, http.StatusBadRequest, Error{
			Code:    InvalidBody,
			Message: "Invalid photo part",
		})
		return
	}
	form.Photo = photo

	spousePhoto, err := formPhoto(r, "spousePhoto")
	if err != nil {
		a.writeError(w, http.StatusBadRequest, Error{
			Code:    InvalidBody,
			Message: "Invalid spousePhoto part",
		})
		return
	}
	form.SpousePhoto = spousePhoto

	reg, err := a.wizard.SubmitPersonalInfo(ctx, phoneNumber, form)
	if err != nil {
		logger.Warn("Failed to submit personal info", "error", err, "phoneNumber", phoneNumber)

		a.writeRegistrationError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, registrationToApiRegistration(reg))
}

// formPhoto pulls an optional file part out of the parsed form. A missing
// part is not an error; the wizard decides whether a stored photo covers it.
func formPhoto(r *http.Request, field string) (*registration.PhotoUpload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}

	return &registration.PhotoUpload{
		Content:     file,
		ContentType: header.Header.Get("Content-Type"),
	}, nil
}

type travelInfoRequest struct {
	ArrivalDate         string `json:"arrivalDate"`
	ArrivalTime         string `json:"arrivalTime"`
	ArrivalTravelMode   string `json:"arrivalTravelMode"`
	DepartureDate       string `json:"departureDate"`
	DepartureTime       string `json:"departureTime"`
	DepartureTravelMode string `json:"departureTravelMode"`
}

func (a *API) putTravelInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)
	phoneNumber := r.PathValue("phoneNumber")

	var req travelInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid body for travel info", "error", err)

		a.writeError(w, http.StatusBadRequest, Error{
			Code:    InvalidBody,
			Message: "Invalid body",
		})
		return
	}

	reg, err := a.wizard.SubmitTravelInfo(ctx, phoneNumber, registration.TravelInfoForm{
		ArrivalDate:         req.ArrivalDate,
		ArrivalTime:         req.ArrivalTime,
		ArrivalTravelMode:   req.ArrivalTravelMode,
		DepartureDate:       req.DepartureDate,
		DepartureTime:       req.DepartureTime,
		DepartureTravelMode: req.DepartureTravelMode,
	})
	if err != nil {
		logger.Warn("Failed to submit travel info", "error", err, "phoneNumber", phoneNumber)

		a.writeRegistrationError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, registrationToApiRegistration(reg))
}

type guestsRequest struct {
	AdditionalGuests []Guest `json:"additionalGuests"`
}

func (a *API) putGuests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)
	phoneNumber := r.PathValue("phoneNumber")

	var req guestsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid body for guests", "error", err)

		a.writeError(w, http.StatusBadRequest, Error{
			Code:    InvalidBody,
			Message: "Invalid body",
		})
		return
	}

	guests := make([]registration.Guest, 0, len(req.AdditionalGuests))
	for _, g := range req.AdditionalGuests {
		guests = append(guests, registration.Guest{Name: g.Name, Relation: g.Relation})
	}

	reg, err := a.wizard.SubmitGuests(ctx, phoneNumber, guests)
	if err != nil {
		logger.Warn("Failed to submit guests", "error", err, "phoneNumber", phoneNumber)

		a.writeRegistrationError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, registrationToApiRegistration(reg))
}
